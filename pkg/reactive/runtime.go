package reactive

import (
	"log/slog"
	"reflect"
)

// Runtime holds the reactive state for one logical thread: the dependency
// graph, the active effect slot and the proxy identity maps.
type Runtime struct {
	// activeEffect is the effect whose body is currently executing.
	// Reads made while it is set subscribe it.
	activeEffect *Effect

	// shouldTrack is true only while an active effect body runs.
	shouldTrack bool

	// targets maps a raw map's identity to its per-key deps.
	targets map[uintptr]*targetDeps

	// proxies holds one identity map per mode.
	proxies [modeCount]map[uintptr]*Proxy

	logger *slog.Logger
}

// targetDeps keeps the raw map alive for as long as deps are keyed by its
// address.
type targetDeps struct {
	raw  map[string]any
	deps map[string]*Dep
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for misuse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// NewRuntime creates an empty runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		targets: make(map[uintptr]*targetDeps),
		logger:  slog.Default().With("component", "reactive"),
	}
	for i := range rt.proxies {
		rt.proxies[i] = make(map[uintptr]*Proxy)
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// ActiveEffect returns the effect currently executing, or nil.
func (rt *Runtime) ActiveEffect() *Effect {
	return rt.activeEffect
}

// IsTracking reports whether a read right now would record a dependency.
func (rt *Runtime) IsTracking() bool {
	return rt.shouldTrack && rt.activeEffect != nil
}

// Untracked runs fn with dependency tracking switched off.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.shouldTrack
	rt.shouldTrack = false
	defer func() { rt.shouldTrack = prev }()
	fn()
}

// Track subscribes the active effect to (target, key).
// It is a no-op when nothing is tracking.
func (rt *Runtime) Track(target map[string]any, key string) {
	if !rt.IsTracking() {
		return
	}
	id := identity(target)
	td, ok := rt.targets[id]
	if !ok {
		td = &targetDeps{raw: target, deps: make(map[string]*Dep)}
		rt.targets[id] = td
	}
	dep, ok := td.deps[key]
	if !ok {
		dep = newDep()
		td.deps[key] = dep
	}
	rt.trackDep(dep)
}

// Trigger runs or schedules every effect subscribed to (target, key).
func (rt *Runtime) Trigger(target map[string]any, key string) {
	td, ok := rt.targets[identity(target)]
	if !ok {
		return
	}
	dep, ok := td.deps[key]
	if !ok {
		return
	}
	rt.triggerDep(dep)
}

// DepFor returns the dep for (target, key), or nil when no effect has read
// that key yet.
func (rt *Runtime) DepFor(target map[string]any, key string) *Dep {
	td, ok := rt.targets[identity(target)]
	if !ok {
		return nil
	}
	return td.deps[key]
}

func (rt *Runtime) trackDep(dep *Dep) {
	if !rt.IsTracking() {
		return
	}
	e := rt.activeEffect
	if dep.add(e) {
		e.deps = append(e.deps, dep)
	}
}

// triggerDep notifies every effect reachable from dep exactly once.
// Computeds in between are marked dirty first, so an effect reading a
// computed and its source together sees fresh values and runs once.
func (rt *Runtime) triggerDep(dep *Dep) {
	var queue []*Effect
	rt.collect(dep, &queue, make(map[*Effect]bool))
	for _, e := range queue {
		if e.scheduler != nil {
			e.scheduler()
		} else {
			e.Run()
		}
	}
}

func (rt *Runtime) collect(dep *Dep, queue *[]*Effect, seen map[*Effect]bool) {
	for _, e := range dep.snapshot() {
		if c := e.computed; c != nil {
			if c.invalidate() {
				rt.collect(c.dep, queue, seen)
			}
			continue
		}
		if !seen[e] {
			seen[e] = true
			*queue = append(*queue, e)
		}
	}
}

// identity returns the address of a map's header, which is stable for the
// map's lifetime.
func identity(m map[string]any) uintptr {
	return reflect.ValueOf(m).Pointer()
}
