package vdom

import (
	"fmt"
	"strconv"
)

// CreateVNode builds a VNode and computes its shape.
//
// t classifies the node: a Tag sets the element bit, a *Component the
// component bit, and the Fragment and TextMarker sentinels set neither.
// children may be nil, a string or number (text children), a *VNode,
// []*VNode or []any (array children, normalized), or Slots / Slot for a
// component. The key is taken from props["key"].
func CreateVNode(t Type, props Props, children any) *VNode {
	v := &VNode{
		Kind:  t.kind(),
		Type:  t,
		Props: props,
	}
	switch tt := t.(type) {
	case Tag:
		v.Tag = string(tt)
		v.ShapeFlag = ShapeElement
	case *Component:
		v.Comp = tt
		v.ShapeFlag = ShapeComponent
	}
	if props != nil {
		v.Key = normalizeKey(props["key"])
	}

	setChildren(v, children)
	return v
}

func setChildren(v *VNode, children any) {
	if children == nil {
		return
	}
	if s, ok := textOf(children); ok {
		if v.Kind == KindFragment {
			v.Children = []*VNode{Text(s)}
			v.ShapeFlag |= ShapeArrayChildren
			return
		}
		v.Text = s
		v.ShapeFlag |= ShapeTextChildren
		return
	}
	switch c := children.(type) {
	case Slots:
		if v.Kind == KindComponent {
			v.Slots = c
			v.ShapeFlag |= ShapeSlotsChildren
			return
		}
	case Slot:
		if v.Kind == KindComponent {
			v.Slots = Slots{"default": c}
			v.ShapeFlag |= ShapeSlotsChildren
			return
		}
	case func(map[string]any) []*VNode:
		if v.Kind == KindComponent {
			v.Slots = Slots{"default": c}
			v.ShapeFlag |= ShapeSlotsChildren
			return
		}
	}
	v.Children = normalizeChildren(children)
	v.ShapeFlag |= ShapeArrayChildren
}

// normalizeChildren flattens children into a VNode list, dropping nils.
func normalizeChildren(children any) []*VNode {
	var out []*VNode
	var add func(c any)
	add = func(c any) {
		switch t := c.(type) {
		case nil:
		case *VNode:
			if t != nil {
				out = append(out, cloneIfMounted(t))
			}
		case []*VNode:
			for _, n := range t {
				add(n)
			}
		case []any:
			for _, n := range t {
				add(n)
			}
		default:
			if n := Normalize(t); n != nil {
				out = append(out, n)
			}
		}
	}
	add(children)
	if out == nil {
		out = []*VNode{}
	}
	return out
}

// Normalize promotes strings and numbers to text VNodes. VNodes pass
// through, cloned if already mounted elsewhere. Anything else yields nil.
func Normalize(child any) *VNode {
	switch c := child.(type) {
	case *VNode:
		if c == nil {
			return nil
		}
		return cloneIfMounted(c)
	}
	if s, ok := textOf(child); ok {
		return Text(s)
	}
	return nil
}

// normalizeRoot turns a render result into a mountable subtree. A nil
// render result becomes an empty text node.
func normalizeRoot(v *VNode) *VNode {
	if v == nil {
		return Text("")
	}
	return cloneIfMounted(v)
}

func cloneIfMounted(v *VNode) *VNode {
	if v.El == nil && v.Component == nil {
		return v
	}
	c := *v
	c.El, c.Anchor, c.Component = nil, nil, nil
	if len(v.Children) > 0 {
		c.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			c.Children[i] = cloneIfMounted(child)
		}
	}
	return &c
}

func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int32, int16, int8, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// H is the ergonomic form of CreateVNode. t may be a tag string, a Type or
// a *Component. With one child argument it is passed through as is;
// several are treated as an array.
func H(t any, props Props, children ...any) *VNode {
	var typ Type
	switch tt := t.(type) {
	case string:
		typ = Tag(tt)
	case Type:
		typ = tt
	default:
		panic(fmt.Sprintf("vdom: H: unsupported type %T", t))
	}

	switch len(children) {
	case 0:
		return CreateVNode(typ, props, nil)
	case 1:
		return CreateVNode(typ, props, children[0])
	default:
		return CreateVNode(typ, props, children)
	}
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind:      KindText,
		Type:      TextMarker,
		Text:      content,
		ShapeFlag: ShapeTextChildren,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// FragmentOf groups children without a wrapper element.
func FragmentOf(children ...any) *VNode {
	return CreateVNode(Fragment, nil, children)
}

// KeyedFragment groups children under a keyed fragment.
func KeyedFragment(key any, children ...any) *VNode {
	return CreateVNode(Fragment, Props{"key": key}, children)
}

// Range maps items to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if n := fn(item, i); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// If returns node when condition holds, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}
