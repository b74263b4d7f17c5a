package vdom

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/sprout/pkg/reactive"
	"github.com/vango-dev/sprout/pkg/scheduler"
)

// Hooks observe renderer activity. Both fields are optional.
type Hooks struct {
	// OnRender is called before a component renders. The returned func,
	// if any, is called once the render and its patch are done.
	OnRender func(component string, initial bool) func()

	// OnUnmount is called after a component instance is torn down.
	OnUnmount func(component string)
}

// Renderer reconciles VNode trees against a Host.
type Renderer struct {
	host   Host
	rt     *reactive.Runtime
	sched  *scheduler.Scheduler
	logger *slog.Logger
	hooks  Hooks

	// roots holds the last tree rendered into each container.
	roots map[Node]*VNode
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRuntime sets the reactive runtime components use.
func WithRuntime(rt *reactive.Runtime) Option {
	return func(r *Renderer) {
		if rt != nil {
			r.rt = rt
		}
	}
}

// WithScheduler sets the scheduler component updates are queued on.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(r *Renderer) {
		if s != nil {
			r.sched = s
		}
	}
}

// WithLogger sets the renderer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHooks installs observation hooks.
func WithHooks(h Hooks) Option {
	return func(r *Renderer) { r.hooks = h }
}

// NewRenderer creates a renderer for host. Without options it gets a fresh
// runtime and a scheduler on a fresh loop.
func NewRenderer(host Host, opts ...Option) *Renderer {
	r := &Renderer{
		host:   host,
		logger: slog.Default().With("component", "renderer"),
		roots:  make(map[Node]*VNode),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rt == nil {
		r.rt = reactive.NewRuntime(reactive.WithLogger(r.logger))
	}
	if r.sched == nil {
		r.sched = scheduler.New(scheduler.NewLoop(), scheduler.WithLogger(r.logger))
	}
	return r
}

// Host returns the host the renderer drives.
func (r *Renderer) Host() Host { return r.host }

// Runtime returns the reactive runtime.
func (r *Renderer) Runtime() *reactive.Runtime { return r.rt }

// Scheduler returns the update scheduler.
func (r *Renderer) Scheduler() *scheduler.Scheduler { return r.sched }

// Root returns the tree last rendered into container, or nil.
func (r *Renderer) Root(container Node) *VNode {
	return r.roots[container]
}

// Render patches vnode into container against the previous render there.
// A nil vnode unmounts whatever was rendered. Containers must be
// comparable.
func (r *Renderer) Render(vnode *VNode, container Node) {
	prev := r.roots[container]
	if vnode == nil {
		if prev != nil {
			r.unmount(prev, nil, true)
			delete(r.roots, container)
		}
		return
	}
	if vnode != prev {
		vnode = cloneIfMounted(vnode)
	}
	r.patch(prev, vnode, container, nil, nil)
	r.roots[container] = vnode
}

// patch reconciles n2 against n1 at one position. A nil n1 mounts n2
// before anchor.
func (r *Renderer) patch(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == n2 {
		return
	}
	if n1 != nil && !IsSameVNodeType(n1, n2) {
		anchor = r.firstHostNode(n1)
		r.patch(nil, n2, container, anchor, parent)
		r.unmount(n1, parent, true)
		return
	}

	switch n2.Kind {
	case KindText:
		r.processText(n1, n2, container, anchor)
	case KindElement:
		r.processElement(n1, n2, container, anchor, parent)
	case KindFragment:
		r.processFragment(n1, n2, container, anchor, parent)
	case KindComponent:
		r.processComponent(n1, n2, container, anchor, parent)
	default:
		panic(fmt.Sprintf("vdom: unknown node kind %v", n2.Kind))
	}
}

func (r *Renderer) processText(n1, n2 *VNode, container, anchor Node) {
	if n1 == nil {
		n2.El = r.host.CreateText(n2.Text)
		r.host.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.host.SetText(n2.El, n2.Text)
	}
}

func (r *Renderer) processElement(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == nil {
		r.mountElement(n2, container, anchor, parent)
		return
	}
	n2.El = n1.El
	r.patchProps(n2.El, n1.Props, n2.Props)
	r.patchChildren(n1, n2, n2.El, nil, parent)
}

func (r *Renderer) mountElement(v *VNode, container, anchor Node, parent *Instance) {
	el := r.host.CreateElement(v.Tag)
	v.El = el

	switch {
	case v.ShapeFlag.HasTextChildren():
		r.host.SetElementText(el, v.Text)
	case v.ShapeFlag.HasArrayChildren():
		r.mountChildren(v.Children, el, nil, parent)
	}

	r.mountProps(el, v.Props)
	r.host.Insert(el, container, anchor)
}

func (r *Renderer) mountChildren(children []*VNode, container, anchor Node, parent *Instance) {
	for _, c := range children {
		r.patch(nil, c, container, anchor, parent)
	}
}

// processFragment brackets the children between two empty text nodes so
// later mounts and moves have a stable position.
func (r *Renderer) processFragment(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == nil {
		n2.El = r.host.CreateText("")
		n2.Anchor = r.host.CreateText("")
		r.host.Insert(n2.El, container, anchor)
		r.host.Insert(n2.Anchor, container, anchor)
		r.mountChildren(n2.Children, container, n2.Anchor, parent)
		return
	}
	n2.El, n2.Anchor = n1.El, n1.Anchor
	r.patchChildren(n1, n2, container, n2.Anchor, parent)
}

func (r *Renderer) processComponent(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == nil {
		r.mountComponent(n2, container, anchor, parent)
		return
	}
	r.updateComponent(n1, n2)
}

func (r *Renderer) mountComponent(v *VNode, container, anchor Node, parent *Instance) {
	inst := newInstance(r, v, parent)
	v.Component = inst
	inst.Container = container

	r.setupComponent(inst)
	r.setupRenderEffect(inst, anchor)
}

func (r *Renderer) setupRenderEffect(inst *Instance, anchor Node) {
	name := inst.Name()
	inst.job = scheduler.NewJob(name, func() {
		if !inst.IsUnmounted {
			inst.effect.Run()
		}
	})
	inst.effect = r.rt.NewEffect(func() {
		if !inst.IsMounted {
			done := r.beginRender(name, true)
			tree := r.renderRoot(inst)
			inst.Subtree = tree
			r.patch(nil, tree, inst.Container, anchor, inst)
			inst.VNode.El = tree.El
			inst.IsMounted = true
			done()
			return
		}

		done := r.beginRender(name, false)
		if next := inst.Next; next != nil {
			inst.Next = nil
			next.El = inst.VNode.El
			r.updateComponentPreRender(inst, next)
		}
		prev := inst.Subtree
		tree := r.renderRoot(inst)
		inst.Subtree = tree
		r.patch(prev, tree, inst.Container, nil, inst)
		inst.VNode.El = tree.El
		r.updateHostEl(inst, tree.El)
		done()
	}, reactive.WithScheduler(func() {
		r.sched.QueueJob(inst.job)
	}))
	inst.effect.Run()
}

func (r *Renderer) beginRender(name string, initial bool) func() {
	if r.hooks.OnRender == nil {
		return func() {}
	}
	if done := r.hooks.OnRender(name, initial); done != nil {
		return done
	}
	return func() {}
}

// updateHostEl propagates a new root host node up through parents whose
// subtree is this instance's placeholder.
func (r *Renderer) updateHostEl(inst *Instance, el Node) {
	for p := inst; p.Parent != nil && p.Parent.Subtree == p.VNode; p = p.Parent {
		p.Parent.VNode.El = el
	}
}

func (r *Renderer) updateComponentPreRender(inst *Instance, next *VNode) {
	next.Component = inst
	inst.VNode = next
	inst.Slots = next.Slots
	inst.updateProps(next.Props)
}

func (r *Renderer) updateComponent(n1, n2 *VNode) {
	inst := n1.Component
	n2.Component = inst
	if shouldUpdateComponent(n1, n2) {
		inst.Next = n2
		inst.Update()
		return
	}
	n2.El = n1.El
	inst.VNode = n2
}

// shouldUpdateComponent compares the keys of the next props against the
// previous values. Keys only present on the previous props and slot
// changes do not force an update.
func shouldUpdateComponent(prev, next *VNode) bool {
	for k, v := range next.Props {
		if reactive.HasChanged(v, prev.Props[k]) {
			return true
		}
	}
	return false
}

// unmount tears v down. With doRemove false the host nodes are left in
// place because an ancestor's removal takes them along.
func (r *Renderer) unmount(v *VNode, parent *Instance, doRemove bool) {
	switch v.Kind {
	case KindComponent:
		r.unmountComponent(v.Component, doRemove)
	case KindElement:
		for _, c := range v.Children {
			r.unmount(c, parent, false)
		}
		if doRemove {
			r.host.Remove(v.El)
		}
	case KindFragment:
		for _, c := range v.Children {
			r.unmount(c, parent, doRemove)
		}
		if doRemove {
			r.host.Remove(v.El)
			r.host.Remove(v.Anchor)
		}
	case KindText:
		if doRemove {
			r.host.Remove(v.El)
		}
	}
}

func (r *Renderer) unmountChildren(children []*VNode, parent *Instance) {
	for _, c := range children {
		r.unmount(c, parent, true)
	}
}

func (r *Renderer) unmountComponent(inst *Instance, doRemove bool) {
	if inst == nil || inst.IsUnmounted {
		return
	}
	inst.IsUnmounted = true
	if inst.effect != nil {
		inst.effect.Stop()
	}
	r.sched.Invalidate(inst.job)
	if inst.Subtree != nil {
		r.unmount(inst.Subtree, inst, doRemove)
	}
	if r.hooks.OnUnmount != nil {
		r.hooks.OnUnmount(inst.Name())
	}
}

// move re-inserts every host node of v before anchor.
func (r *Renderer) move(v *VNode, container, anchor Node) {
	for _, n := range r.hostNodes(v) {
		r.host.Insert(n, container, anchor)
	}
}

// hostNodes lists the top-level host nodes v occupies, in order.
func (r *Renderer) hostNodes(v *VNode) []Node {
	switch v.Kind {
	case KindComponent:
		if v.Component == nil || v.Component.Subtree == nil {
			return nil
		}
		return r.hostNodes(v.Component.Subtree)
	case KindFragment:
		out := []Node{v.El}
		for _, c := range v.Children {
			out = append(out, r.hostNodes(c)...)
		}
		return append(out, v.Anchor)
	default:
		return []Node{v.El}
	}
}

// firstHostNode returns the host node a sibling should be inserted before
// to land in front of v.
func (r *Renderer) firstHostNode(v *VNode) Node {
	if v.Kind == KindComponent {
		if v.Component == nil || v.Component.Subtree == nil {
			return nil
		}
		return r.firstHostNode(v.Component.Subtree)
	}
	return v.El
}
