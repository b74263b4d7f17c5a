// Package reactive tracks which computations read which state and re-runs
// them when that state changes.
//
// All bookkeeping hangs off a Runtime. A Runtime owns the dependency graph
// (target, key) → Dep, the slot holding the currently running Effect, and
// one identity map per proxy mode so that wrapping the same map twice yields
// the same *Proxy. Independent runtimes never observe each other.
//
// # State
//
// Plain map[string]any values become tracked state through a *Proxy:
//
//	rt := reactive.NewRuntime()
//	state := rt.Wrap(map[string]any{"count": 0}, reactive.ModeMutable)
//
//	rt.Effect(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//
//	state.Set("count", 1) // prints "count is 1"
//
// Reads through a mutable proxy subscribe the running Effect to that key.
// Writes trigger every Effect subscribed to the key. Readonly and
// shallow-readonly proxies never track and ignore writes with a logged
// warning.
//
// # Derived Values
//
// Ref boxes a single value. Computed caches the result of a getter and
// recomputes only after one of the values it read changed:
//
//	price := rt.Ref(10)
//	qty := rt.Ref(3)
//	total := rt.Computed(func() any {
//	    return price.Value().(int) * qty.Value().(int)
//	})
//
// # Threading
//
// A Runtime is not safe for concurrent use. Confine it to one goroutine,
// normally the scheduler loop that also flushes render jobs.
package reactive
