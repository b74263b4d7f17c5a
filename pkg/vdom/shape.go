package vdom

import "strings"

// ShapeFlags classifies a VNode's type and the kind of its children.
type ShapeFlags uint8

const (
	ShapeElement ShapeFlags = 1 << iota
	ShapeComponent
	ShapeTextChildren
	ShapeArrayChildren
	ShapeSlotsChildren
)

var shapeNames = []struct {
	flag ShapeFlags
	name string
}{
	{ShapeElement, "Element"},
	{ShapeComponent, "Component"},
	{ShapeTextChildren, "TextChildren"},
	{ShapeArrayChildren, "ArrayChildren"},
	{ShapeSlotsChildren, "SlotsChildren"},
}

// Has reports whether every bit of flag is set.
func (f ShapeFlags) Has(flag ShapeFlags) bool {
	return f&flag == flag
}

func (f ShapeFlags) IsElement() bool        { return f.Has(ShapeElement) }
func (f ShapeFlags) IsComponent() bool      { return f.Has(ShapeComponent) }
func (f ShapeFlags) HasTextChildren() bool  { return f.Has(ShapeTextChildren) }
func (f ShapeFlags) HasArrayChildren() bool { return f.Has(ShapeArrayChildren) }
func (f ShapeFlags) HasSlotsChildren() bool { return f.Has(ShapeSlotsChildren) }

// String lists the set flags joined by "|".
func (f ShapeFlags) String() string {
	var parts []string
	for _, n := range shapeNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}
