// Package memhost is an in-memory vdom.Host.
//
// Every primitive the renderer issues is applied to a plain node tree and
// appended to an operation log. Tests assert on the log (exact op
// sequences, move counts) and on the serialized tree:
//
//	h := memhost.New()
//	root := h.CreateRoot()
//	r := vdom.NewRenderer(h)
//	r.Render(vdom.H("ul", nil, vdom.H("li", vdom.Props{"key": 1}, "a")), root)
//	h.Serialize(root) // <ul><li>a</li></ul>
//
// An Insert of a node that is already attached is logged as a move.
package memhost
