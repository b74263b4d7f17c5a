package reactive

// Computed caches the result of a getter. The getter runs on the first
// Value call and again only after a value it read has changed.
type Computed struct {
	rt     *Runtime
	effect *Effect
	getter func() any
	value  any
	dirty  bool

	// dep holds effects that read this computed.
	dep *Dep
}

// Computed creates a lazily evaluated derived value.
func (rt *Runtime) Computed(getter func() any) *Computed {
	c := &Computed{
		rt:     rt,
		getter: getter,
		dirty:  true,
		dep:    newDep(),
	}
	c.effect = rt.NewEffect(func() {
		c.value = c.getter()
	}, WithScheduler(func() { c.invalidate() }))
	c.effect.computed = c
	return c
}

// invalidate marks the value stale. It reports false when it already was,
// in which case every reader has been notified since the last evaluation.
func (c *Computed) invalidate() bool {
	if c.dirty {
		return false
	}
	c.dirty = true
	return true
}

// Value returns the cached value, recomputing first if it is stale.
func (c *Computed) Value() any {
	c.rt.trackDep(c.dep)
	if c.dirty {
		c.dirty = false
		c.effect.Run()
	}
	return c.value
}

// Dirty reports whether the next Value call will run the getter.
func (c *Computed) Dirty() bool {
	return c.dirty
}

// Stop detaches the computed from its sources. The last value stays
// readable and is never recomputed by triggers.
func (c *Computed) Stop() {
	c.effect.Stop()
}
