// Package sprout is the public entry point of the sprout runtime.
//
// It bundles a reactive runtime, a scheduler on a single-goroutine loop and
// a renderer over a host into an App:
//
//	host := memhost.New()
//	app := sprout.New(host, sprout.Config{})
//	go app.Run(ctx)
//
//	app.Call(ctx, func() {
//	    app.Mount(Counter, nil, host.CreateRoot())
//	})
//
// Components are plain values:
//
//	var Counter = &sprout.Component{
//	    Name: "Counter",
//	    Setup: func(props *sprout.Proxy, ctx *sprout.SetupContext) map[string]any {
//	        return map[string]any{"count": ctx.Runtime().Ref(0)}
//	    },
//	    Render: func(s *sprout.Scope) *sprout.VNode {
//	        return sprout.H("p", nil, fmt.Sprint(s.Get("count")))
//	    },
//	}
package sprout

import (
	"github.com/vango-dev/sprout/pkg/reactive"
	"github.com/vango-dev/sprout/pkg/scheduler"
	"github.com/vango-dev/sprout/pkg/vdom"
)

// =============================================================================
// Reactivity
// =============================================================================

type (
	Runtime  = reactive.Runtime
	Proxy    = reactive.Proxy
	Ref      = reactive.Ref
	Computed = reactive.Computed
	Effect   = reactive.Effect
)

// =============================================================================
// Scheduling
// =============================================================================

type (
	Loop      = scheduler.Loop
	Scheduler = scheduler.Scheduler
	Tick      = scheduler.Tick
)

// =============================================================================
// Virtual tree
// =============================================================================

type (
	VNode        = vdom.VNode
	Props        = vdom.Props
	Host         = vdom.Host
	Component    = vdom.Component
	SetupContext = vdom.SetupContext
	Scope        = vdom.Scope
	Slots        = vdom.Slots
)

// H creates a VNode. t is a tag name or a *Component.
func H(t any, props Props, children ...any) *VNode {
	return vdom.H(t, props, children...)
}

// Text creates a text VNode.
func Text(s string) *VNode {
	return vdom.Text(s)
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	return vdom.FragmentOf(children...)
}
