package vdom

import (
	"fmt"
	"reflect"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <li>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Component placeholder
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Type is what a VNode renders: a host Tag, a *Component, Fragment or
// TextMarker.
type Type interface {
	kind() VKind
}

// Tag is a host element name.
type Tag string

func (Tag) kind() VKind { return KindElement }

type marker struct {
	name string
	k    VKind
}

func (m *marker) kind() VKind    { return m.k }
func (m *marker) String() string { return m.name }

var (
	// Fragment groups children without a host node of its own.
	Fragment Type = &marker{name: "Fragment", k: KindFragment}

	// TextMarker is the type of text VNodes.
	TextMarker Type = &marker{name: "Text", k: KindText}
)

// Props holds attributes and event handlers. The "key" entry is the
// reconciliation key and never reaches the host.
type Props map[string]any

// VNode is one node of a virtual tree snapshot.
type VNode struct {
	Kind      VKind
	Type      Type
	Tag       string     // For KindElement
	Comp      *Component // For KindComponent
	Props     Props
	Text      string   // Text children, or the content of a text node
	Children  []*VNode // Array children
	Slots     Slots    // Component slot children
	Key       any      // nil when absent
	ShapeFlag ShapeFlags

	// El is the host node, set once mounted. For fragments it is the start
	// anchor and Anchor the end anchor. For components it mirrors the
	// subtree's El.
	El     Node
	Anchor Node

	// Component is the mounted instance behind a component placeholder.
	Component *Instance
}

// HasKey reports whether the node carries a reconciliation key.
func (v *VNode) HasKey() bool {
	return v != nil && v.Key != nil
}

// String renders a compact description, e.g. li#a or Counter.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	var name string
	switch v.Kind {
	case KindElement:
		name = v.Tag
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	case KindFragment:
		name = "Fragment"
	case KindComponent:
		name = v.Comp.displayName()
	}
	if v.Key != nil {
		name += "#" + fmt.Sprint(v.Key)
	}
	return name
}

// IsSameVNodeType reports whether two nodes at one position can be patched
// in place: same type and same key.
func IsSameVNodeType(a, b *VNode) bool {
	return a.Type == b.Type && a.Key == b.Key
}

// normalizeKey keeps comparable keys as they are and stringifies the rest
// so keys are always usable as map keys.
func normalizeKey(k any) any {
	if k == nil {
		return nil
	}
	if reflect.TypeOf(k).Comparable() {
		return k
	}
	return fmt.Sprint(k)
}

// IsOn reports whether a prop key names an event subscription: "on"
// followed by an upper-case letter.
func IsOn(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on") && key[2] >= 'A' && key[2] <= 'Z'
}

// EventName returns the event name of an IsOn key, e.g. onClick → click.
func EventName(key string) string {
	if !IsOn(key) {
		return ""
	}
	return strings.ToLower(key[2:3]) + key[3:]
}
