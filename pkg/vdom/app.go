package vdom

// App mounts a root component into a container.
type App struct {
	renderer  *Renderer
	root      *Component
	props     Props
	vnode     *VNode
	container Node
}

// CreateApp prepares root for mounting with the given root props.
func (r *Renderer) CreateApp(root *Component, props Props) *App {
	return &App{renderer: r, root: root, props: props}
}

// Mount renders the root component into container and returns its vnode.
func (a *App) Mount(container Node) *VNode {
	a.vnode = CreateVNode(a.root, a.props, nil)
	a.container = container
	a.renderer.Render(a.vnode, container)
	return a.vnode
}

// Unmount tears the root component down.
func (a *App) Unmount() {
	if a.container == nil {
		return
	}
	a.renderer.Render(nil, a.container)
	a.vnode, a.container = nil, nil
}

// Instance returns the mounted root instance, or nil.
func (a *App) Instance() *Instance {
	if a.vnode == nil {
		return nil
	}
	return a.vnode.Component
}
