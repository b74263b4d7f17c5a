package vdom

// Node is an opaque host node. The renderer never inspects it.
type Node any

// Host is the set of primitives the renderer drives. Implementations own
// the node representation: a DOM, a terminal buffer or an in-memory tree.
type Host interface {
	CreateElement(tag string) Node
	CreateText(text string) Node
	SetText(node Node, text string)
	SetElementText(node Node, text string)

	// Insert places node in container before anchor. A nil anchor appends.
	// Inserting an attached node moves it.
	Insert(node, container, anchor Node)
	Remove(node Node)

	// PatchProp updates one prop. A nil next removes it. Keys for which
	// IsOn holds are event subscriptions.
	PatchProp(node Node, key string, prev, next any)
}
