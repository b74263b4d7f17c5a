package reactive

// Effect is a tracked computation. Each run records the deps it reads; a
// trigger on any of them runs the effect again, or calls its scheduler when
// one is set.
type Effect struct {
	id uint64
	rt *Runtime

	fn func()

	// deps are the sets this effect currently belongs to.
	deps []*Dep

	// active is false once Stop has been called.
	active bool

	scheduler func()
	onStop    func()
	lazy      bool

	// computed is set on the internal effect of a Computed.
	computed *Computed
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// WithScheduler makes triggers call fn instead of re-running the effect.
func WithScheduler(fn func()) EffectOption {
	return func(e *Effect) { e.scheduler = fn }
}

// WithOnStop registers a callback run once when the effect is stopped.
func WithOnStop(fn func()) EffectOption {
	return func(e *Effect) { e.onStop = fn }
}

// WithLazy skips the initial run performed by Runtime.Effect.
func WithLazy() EffectOption {
	return func(e *Effect) { e.lazy = true }
}

// NewEffect creates an effect without running it.
func (rt *Runtime) NewEffect(fn func(), opts ...EffectOption) *Effect {
	e := &Effect{
		id:     nextID(),
		rt:     rt,
		fn:     fn,
		active: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Effect creates an effect and runs it immediately unless WithLazy is given.
// The returned effect's Run method is the runner.
func (rt *Runtime) Effect(fn func(), opts ...EffectOption) *Effect {
	e := rt.NewEffect(fn, opts...)
	if !e.lazy {
		e.Run()
	}
	return e
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return e.active
}

// Deps returns how many dep sets the effect belongs to.
func (e *Effect) Deps() int {
	return len(e.deps)
}

// Run executes the effect body. An active effect first leaves all of its
// deps, then re-subscribes to whatever the body reads. A stopped effect
// runs its body with tracking off.
func (e *Effect) Run() {
	rt := e.rt
	if !e.active {
		rt.Untracked(e.fn)
		return
	}

	e.cleanup()

	prevEffect, prevTrack := rt.activeEffect, rt.shouldTrack
	rt.activeEffect, rt.shouldTrack = e, true
	defer func() {
		rt.activeEffect, rt.shouldTrack = prevEffect, prevTrack
	}()

	e.fn()
}

// Stop removes the effect from every dep and marks it inactive.
// Later calls do nothing.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.cleanup()
	if e.onStop != nil {
		e.onStop()
	}
	e.active = false
}

func (e *Effect) cleanup() {
	for _, dep := range e.deps {
		dep.remove(e)
	}
	e.deps = e.deps[:0]
}
