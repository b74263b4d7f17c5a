package vdom

import (
	"strings"
	"unicode"

	"github.com/vango-dev/sprout/internal/errors"
	"github.com/vango-dev/sprout/pkg/reactive"
	"github.com/vango-dev/sprout/pkg/scheduler"
)

// SetupFunc runs once per instance. The returned map becomes the render
// scope's state; refs in it are unwrapped on read.
type SetupFunc func(props *reactive.Proxy, ctx *SetupContext) map[string]any

// RenderFunc produces the instance's subtree. It runs inside the render
// effect, so every reactive read subscribes the instance.
type RenderFunc func(s *Scope) *VNode

// Component describes a stateful component.
type Component struct {
	Name   string
	Setup  SetupFunc
	Render RenderFunc
}

func (c *Component) kind() VKind { return KindComponent }

func (c *Component) displayName() string {
	if c == nil || c.Name == "" {
		return "Anonymous"
	}
	return c.Name
}

// Slot renders a named region of a component's children.
type Slot func(props map[string]any) []*VNode

// Slots maps slot names to slot functions.
type Slots map[string]Slot

// Instance is the live state behind a mounted component VNode.
type Instance struct {
	uid      uint64
	renderer *Renderer

	Type   *Component
	VNode  *VNode
	Next   *VNode
	Parent *Instance

	// Subtree is the last rendered root.
	Subtree *VNode

	// Container is the host node the instance was mounted into.
	Container Node

	Props *reactive.Proxy
	Slots Slots
	State *reactive.RefScope

	provides map[string]any
	scope    *Scope
	effect   *reactive.Effect
	job      *scheduler.Job

	IsMounted   bool
	IsUnmounted bool
}

var instanceSeq uint64

func newInstance(r *Renderer, v *VNode, parent *Instance) *Instance {
	instanceSeq++
	inst := &Instance{
		uid:      instanceSeq,
		renderer: r,
		Type:     v.Comp,
		VNode:    v,
		Parent:   parent,
		Slots:    v.Slots,
	}
	inst.Props = r.rt.Wrap(componentProps(v.Props), reactive.ModeShallowReadonly)
	inst.scope = &Scope{inst: inst}
	return inst
}

// UID returns a per-process instance number.
func (i *Instance) UID() uint64 { return i.uid }

// Name returns the component's display name.
func (i *Instance) Name() string { return i.Type.displayName() }

// Scope returns the render scope.
func (i *Instance) Scope() *Scope { return i.scope }

// Update re-renders the instance now, bypassing the scheduler.
func (i *Instance) Update() {
	if i.IsUnmounted || i.effect == nil {
		return
	}
	i.renderer.sched.Invalidate(i.job)
	i.effect.Run()
}

// componentProps copies vnode props without the reconciliation key.
func componentProps(p Props) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		if k == "key" {
			continue
		}
		out[k] = v
	}
	return out
}

// updateProps writes next into the instance's props map in place so the
// proxy handed to setup stays current.
func (i *Instance) updateProps(next Props) {
	raw := i.Props.Raw()
	for k := range raw {
		if _, ok := next[k]; !ok {
			delete(raw, k)
		}
	}
	for k, v := range next {
		if k == "key" {
			continue
		}
		raw[k] = v
	}
}

func (r *Renderer) setupComponent(inst *Instance) {
	comp := inst.Type
	if comp.Setup != nil {
		var state map[string]any
		r.rt.Untracked(func() {
			state = comp.Setup(inst.Props, &SetupContext{inst: inst})
		})
		inst.State = r.rt.ProxyRefs(state)
	} else {
		inst.State = r.rt.ProxyRefs(nil)
	}
	if comp.Render == nil {
		r.logger.Warn("component has no render function",
			"component", comp.displayName(),
			"error", errors.New("E103"))
	}
}

// renderRoot calls the render function and normalizes the result.
func (r *Renderer) renderRoot(inst *Instance) *VNode {
	if inst.Type.Render == nil {
		return Text("")
	}
	return normalizeRoot(inst.Type.Render(inst.scope))
}

// SetupContext is passed to Setup.
type SetupContext struct {
	inst *Instance
}

// Runtime returns the reactive runtime the instance belongs to.
func (c *SetupContext) Runtime() *reactive.Runtime {
	return c.inst.renderer.rt
}

// Scheduler returns the scheduler driving the instance's updates.
func (c *SetupContext) Scheduler() *scheduler.Scheduler {
	return c.inst.renderer.sched
}

// Emit calls the parent's handler for event. "add-foo" and "addFoo" both
// resolve to the onAddFoo prop.
func (c *SetupContext) Emit(event string, args ...any) {
	c.inst.emit(event, args...)
}

// Slots returns the instance's current slots.
func (c *SetupContext) Slots() Slots {
	return c.inst.Slots
}

// Provide makes value visible to Inject in every descendant.
func (c *SetupContext) Provide(key string, value any) {
	if c.inst.provides == nil {
		c.inst.provides = make(map[string]any)
	}
	c.inst.provides[key] = value
}

// Inject looks key up in the ancestors' provides, nearest first. When no
// ancestor provides it, def is returned; a func() any default is called.
func (c *SetupContext) Inject(key string, def ...any) any {
	for p := c.inst.Parent; p != nil; p = p.Parent {
		if v, ok := p.provides[key]; ok {
			return v
		}
	}
	if len(def) > 0 {
		if fn, ok := def[0].(func() any); ok {
			return fn()
		}
		return def[0]
	}
	c.inst.renderer.logger.Warn("injection not found",
		"component", c.inst.Name(),
		"key", key,
		"error", errors.New("E102"))
	return nil
}

// NextTick schedules cb after the pending flush.
func (c *SetupContext) NextTick(cb func()) *scheduler.Tick {
	return c.inst.renderer.sched.NextTick(cb)
}

func (i *Instance) emit(event string, args ...any) {
	name := toHandlerKey(camelize(event))
	h, ok := i.Props.Raw()[name]
	if !ok || h == nil {
		return
	}
	switch fn := h.(type) {
	case func(...any):
		fn(args...)
	case func():
		fn()
	case func(any):
		var arg any
		if len(args) > 0 {
			arg = args[0]
		}
		fn(arg)
	default:
		i.renderer.logger.Warn("event handler has unsupported signature",
			"component", i.Name(),
			"event", event,
			"handler", name)
	}
}

// camelize turns "add-foo" into "addFoo".
func camelize(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		parts[i] = capitalize(parts[i])
	}
	return strings.Join(parts, "")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func toHandlerKey(s string) string {
	if s == "" {
		return ""
	}
	return "on" + capitalize(s)
}

// Scope is the view a render function reads from: setup state first, then
// props, then the public properties $el, $slots and $props.
type Scope struct {
	inst *Instance
}

// Get returns the value visible under key, or nil.
func (s *Scope) Get(key string) any {
	inst := s.inst
	if inst.State != nil && inst.State.Has(key) {
		return inst.State.Get(key)
	}
	if inst.Props.Has(key) {
		return inst.Props.Get(key)
	}
	switch key {
	case "$el":
		return inst.VNode.El
	case "$slots":
		return inst.Slots
	case "$props":
		return inst.Props
	}
	return nil
}

// Has reports whether key resolves to anything.
func (s *Scope) Has(key string) bool {
	inst := s.inst
	if inst.State != nil && inst.State.Has(key) {
		return true
	}
	if inst.Props.Has(key) {
		return true
	}
	switch key {
	case "$el", "$slots", "$props":
		return true
	}
	return false
}

// Set writes setup state, through refs where present. Props are readonly;
// writing one logs a warning and returns false.
func (s *Scope) Set(key string, v any) bool {
	inst := s.inst
	if inst.State != nil && inst.State.Has(key) {
		inst.State.Set(key, v)
		return true
	}
	inst.renderer.logger.Warn("write to component scope ignored",
		"component", inst.Name(),
		"key", key,
		"error", errors.New("E100"))
	return false
}

// Props returns the readonly props proxy.
func (s *Scope) Props() *reactive.Proxy { return s.inst.Props }

// Slots returns the current slots.
func (s *Scope) Slots() Slots { return s.inst.Slots }

// Instance returns the instance behind the scope.
func (s *Scope) Instance() *Instance { return s.inst }

// Emit behaves like SetupContext.Emit.
func (s *Scope) Emit(event string, args ...any) {
	s.inst.emit(event, args...)
}

// RenderSlot renders slot name with props as a fragment.
func (s *Scope) RenderSlot(name string, props map[string]any) *VNode {
	return RenderSlot(s.inst.Slots, name, props)
}

// RenderSlot wraps the output of slots[name] in a fragment. A missing slot
// renders an empty fragment.
func RenderSlot(slots Slots, name string, props map[string]any) *VNode {
	slot, ok := slots[name]
	if !ok || slot == nil {
		return CreateVNode(Fragment, nil, []*VNode{})
	}
	return CreateVNode(Fragment, nil, slot(props))
}
