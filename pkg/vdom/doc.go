// Package vdom describes trees as VNodes and reconciles them against a host.
//
// # Core Types
//
// VNode is the building block: an element, a text node, a fragment or a
// component placeholder. Its Type is a tagged variant (Tag, *Component,
// Fragment, TextMarker) and ShapeFlag classifies the node and its children
// for dispatch.
//
//	H("ul", Props{"class": "todos"},
//	    H("li", Props{"key": 1}, "write tests"),
//	    H("li", Props{"key": 2}, "ship"),
//	)
//
// The element factories in elements.go build the same trees from variadic
// arguments:
//
//	Ul(Class("todos"),
//	    Li(Key(1), "write tests"),
//	    Li(Key(2), "ship"),
//	)
//
// # Reconciliation
//
// A Renderer patches a new tree against the previous one and drives a Host
// through the minimal set of operations. Children lists with keys are
// diffed by scanning both ends, matching the middle window by key and
// moving only nodes outside the longest increasing subsequence of matched
// positions.
//
// # Components
//
// A component placeholder mounts an Instance whose render runs inside a
// reactive Effect. State read during render subscribes the Effect; a later
// write queues the instance's update job on the scheduler instead of
// re-rendering synchronously.
package vdom
