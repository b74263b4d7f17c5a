package reactive

// Ref boxes a single value with its own dep. Map values are stored behind a
// mutable proxy so nested reads are tracked too.
type Ref struct {
	rt    *Runtime
	raw   any
	value any
	dep   *Dep
}

// Ref creates a ref holding v.
func (rt *Runtime) Ref(v any) *Ref {
	return &Ref{
		rt:    rt,
		raw:   v,
		value: rt.convert(v),
		dep:   newDep(),
	}
}

// Value returns the current value and subscribes the active effect.
func (r *Ref) Value() any {
	r.rt.trackDep(r.dep)
	return r.value
}

// Peek returns the current value without subscribing.
func (r *Ref) Peek() any {
	return r.value
}

// Set stores v and triggers subscribers when v differs from the previous
// value by identity.
func (r *Ref) Set(v any) {
	if !HasChanged(v, r.raw) {
		return
	}
	r.raw = v
	r.value = r.rt.convert(v)
	r.rt.triggerDep(r.dep)
}

// Dep exposes the ref's subscriber set.
func (r *Ref) Dep() *Dep {
	return r.dep
}

func (rt *Runtime) convert(v any) any {
	if m, ok := v.(map[string]any); ok && m != nil {
		return rt.Wrap(m, ModeMutable)
	}
	return v
}

// IsRef reports whether v is a *Ref.
func IsRef(v any) bool {
	_, ok := v.(*Ref)
	return ok
}

// Unref returns the value inside a ref, or v itself.
func Unref(v any) any {
	if r, ok := v.(*Ref); ok {
		return r.Value()
	}
	return v
}

// RefScope is a view over a plain map that unwraps refs on read and writes
// through refs on assignment.
type RefScope struct {
	target map[string]any
}

// ProxyRefs wraps target in a RefScope.
func (rt *Runtime) ProxyRefs(target map[string]any) *RefScope {
	if target == nil {
		target = make(map[string]any)
	}
	return &RefScope{target: target}
}

// Get returns the unwrapped value at key.
func (s *RefScope) Get(key string) any {
	return Unref(s.target[key])
}

// Has reports whether key is present.
func (s *RefScope) Has(key string) bool {
	_, ok := s.target[key]
	return ok
}

// Set assigns through an existing ref unless v is itself a ref, in which
// case the slot is replaced.
func (s *RefScope) Set(key string, v any) {
	if cur, ok := s.target[key].(*Ref); ok && !IsRef(v) {
		cur.Set(v)
		return
	}
	s.target[key] = v
}

// Raw returns the wrapped map.
func (s *RefScope) Raw() map[string]any {
	return s.target
}
