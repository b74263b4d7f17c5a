package reactive

import (
	"sort"

	"github.com/vango-dev/sprout/internal/errors"
)

// Mode selects how a proxy treats reads and writes.
type Mode uint8

const (
	// ModeMutable tracks reads, triggers on writes and wraps nested maps
	// mutably.
	ModeMutable Mode = iota

	// ModeReadonly never tracks, ignores writes and wraps nested maps
	// readonly.
	ModeReadonly

	// ModeShallowReadonly never tracks, ignores writes and returns nested
	// values as they are.
	ModeShallowReadonly

	modeCount
)

func (m Mode) String() string {
	switch m {
	case ModeMutable:
		return "mutable"
	case ModeReadonly:
		return "readonly"
	case ModeShallowReadonly:
		return "shallow-readonly"
	default:
		return "unknown"
	}
}

// Sentinel keys answered by every proxy without tracking.
const (
	FlagIsReactive = "__v_isReactive"
	FlagIsReadonly = "__v_isReadonly"
	FlagRaw        = "__v_raw"
)

// iterateKey is the dep key for operations that depend on the key set.
const iterateKey = "\x00iterate"

// Proxy is a tracked view over a raw map. It is the only way reads and
// writes reach the dependency graph.
type Proxy struct {
	rt   *Runtime
	raw  map[string]any
	mode Mode
}

// Wrap returns the proxy for raw in the given mode, creating it on first
// use. A nil map is replaced by a fresh empty one.
func (rt *Runtime) Wrap(raw map[string]any, mode Mode) *Proxy {
	if raw == nil {
		raw = make(map[string]any)
	}
	id := identity(raw)
	if p, ok := rt.proxies[mode][id]; ok {
		return p
	}
	p := &Proxy{rt: rt, raw: raw, mode: mode}
	rt.proxies[mode][id] = p
	return p
}

// Reactive returns a mutable proxy for v. A proxy argument is re-wrapped
// over its raw map. Anything other than a map is returned unchanged.
func (rt *Runtime) Reactive(v any) any {
	return rt.wrapAny(v, ModeMutable)
}

// Readonly returns a deep readonly proxy for v.
func (rt *Runtime) Readonly(v any) any {
	return rt.wrapAny(v, ModeReadonly)
}

// ShallowReadonly returns a readonly proxy whose nested values are not
// wrapped.
func (rt *Runtime) ShallowReadonly(v any) any {
	return rt.wrapAny(v, ModeShallowReadonly)
}

func (rt *Runtime) wrapAny(v any, mode Mode) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			break
		}
		return rt.Wrap(t, mode)
	case *Proxy:
		return rt.Wrap(t.raw, mode)
	}
	rt.logger.Warn("value cannot be made reactive",
		"mode", mode.String(),
		"type", typeName(v),
		"error", errors.New("E101"))
	return v
}

// Raw returns the underlying map.
func (p *Proxy) Raw() map[string]any {
	return p.raw
}

// Mode returns the proxy's mode.
func (p *Proxy) Mode() Mode {
	return p.mode
}

// Runtime returns the runtime that owns the proxy.
func (p *Proxy) Runtime() *Runtime {
	return p.rt
}

// Get reads key. Mutable proxies subscribe the active effect. Nested maps
// come back wrapped in the same mode, except under ModeShallowReadonly.
func (p *Proxy) Get(key string) any {
	switch key {
	case FlagIsReactive:
		return p.mode == ModeMutable
	case FlagIsReadonly:
		return p.mode != ModeMutable
	case FlagRaw:
		return p.raw
	}

	v := p.raw[key]
	if p.mode == ModeMutable {
		p.rt.Track(p.raw, key)
	}
	if p.mode == ModeShallowReadonly {
		return v
	}
	if nested, ok := v.(map[string]any); ok && nested != nil {
		return p.rt.Wrap(nested, p.mode)
	}
	return v
}

// Set writes key and triggers its subscribers. Readonly proxies log a
// warning and leave the map untouched. Set always reports success.
func (p *Proxy) Set(key string, v any) bool {
	if p.mode != ModeMutable {
		p.warnReadonly("set", key)
		return true
	}
	if inner, ok := v.(*Proxy); ok {
		v = inner.raw
	}
	_, existed := p.raw[key]
	p.raw[key] = v
	p.rt.Trigger(p.raw, key)
	if !existed {
		p.rt.Trigger(p.raw, iterateKey)
	}
	return true
}

// Delete removes key and triggers its subscribers and the key-set
// subscribers. Deleting an absent key does nothing.
func (p *Proxy) Delete(key string) bool {
	if p.mode != ModeMutable {
		p.warnReadonly("delete", key)
		return true
	}
	if _, ok := p.raw[key]; !ok {
		return false
	}
	delete(p.raw, key)
	p.rt.Trigger(p.raw, key)
	p.rt.Trigger(p.raw, iterateKey)
	return true
}

// Has reports whether key is present, tracking the key.
func (p *Proxy) Has(key string) bool {
	if p.mode == ModeMutable {
		p.rt.Track(p.raw, key)
	}
	_, ok := p.raw[key]
	return ok
}

// Keys returns the sorted key set, tracking additions and removals.
func (p *Proxy) Keys() []string {
	if p.mode == ModeMutable {
		p.rt.Track(p.raw, iterateKey)
	}
	keys := make([]string, 0, len(p.raw))
	for k := range p.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys, tracking the key set.
func (p *Proxy) Len() int {
	if p.mode == ModeMutable {
		p.rt.Track(p.raw, iterateKey)
	}
	return len(p.raw)
}

func (p *Proxy) warnReadonly(op, key string) {
	p.rt.logger.Warn("write to readonly state ignored",
		"op", op,
		"key", key,
		"mode", p.mode.String(),
		"error", errors.New("E100"))
}

// IsReactive reports whether v is a mutable proxy.
func IsReactive(v any) bool {
	p, ok := v.(*Proxy)
	return ok && p.Get(FlagIsReactive) == true
}

// IsReadonly reports whether v is a readonly or shallow-readonly proxy.
func IsReadonly(v any) bool {
	p, ok := v.(*Proxy)
	return ok && p.Get(FlagIsReadonly) == true
}

// IsProxy reports whether v is any proxy.
func IsProxy(v any) bool {
	return IsReactive(v) || IsReadonly(v)
}

// ToRaw returns the map behind a proxy, or v itself.
func ToRaw(v any) any {
	if p, ok := v.(*Proxy); ok {
		return p.Get(FlagRaw)
	}
	return v
}
