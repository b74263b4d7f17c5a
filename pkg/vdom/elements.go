package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Attr is a single prop produced by the attribute helpers.
type Attr struct {
	Key   string
	Value any
}

// EventHandler binds a handler to an "on"-prefixed prop.
type EventHandler struct {
	Event   string
	Handler any
}

// Key sets the reconciliation key.
func Key(k any) Attr { return Attr{Key: "key", Value: k} }

// createElement builds an element VNode from factory arguments.
// Arguments can be: nil, Attr, []Attr, EventHandler, Props, *VNode,
// []*VNode, *Component, or a string or number (text). A lone text argument
// becomes the element's text children.
func createElement(tag string, args []any) *VNode {
	props := make(Props)
	var children []any

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Allows conditional arguments
		case Attr:
			if v.Key != "" {
				props[v.Key] = v.Value
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					props[a.Key] = a.Value
				}
			}
		case EventHandler:
			props[v.Event] = v.Handler
		case Props:
			for k, val := range v {
				props[k] = val
			}
		case *Component:
			children = append(children, CreateVNode(v, nil, nil))
		default:
			children = append(children, v)
		}
	}

	if len(props) == 0 {
		props = nil
	}
	switch len(children) {
	case 0:
		return CreateVNode(Tag(tag), props, nil)
	case 1:
		if _, ok := textOf(children[0]); ok {
			return CreateVNode(Tag(tag), props, children[0])
		}
	}
	return CreateVNode(Tag(tag), props, children)
}

// Element factories accept the arguments described on createElement.

func Div(args ...any) *VNode    { return createElement("div", args) }
func Span(args ...any) *VNode   { return createElement("span", args) }
func Ul(args ...any) *VNode     { return createElement("ul", args) }
func Ol(args ...any) *VNode     { return createElement("ol", args) }
func Li(args ...any) *VNode     { return createElement("li", args) }
func Button(args ...any) *VNode { return createElement("button", args) }
func Input(args ...any) *VNode  { return createElement("input", args) }

// CustomElement creates an element with a custom tag name.
func CustomElement(tag string, args ...any) *VNode {
	return createElement(tag, args)
}
