package memhost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/vango-dev/sprout/pkg/vdom"
)

// Kind distinguishes host node types.
type Kind uint8

const (
	KindRoot Kind = iota
	KindElement
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Node is one host node.
type Node struct {
	ID       int
	Kind     Kind
	Tag      string
	Text     string
	Props    map[string]any
	Handlers map[string]any
	Parent   *Node
	Children []*Node
}

// Label names the node in op logs and dumps, e.g. li:4 or text:7.
func (n *Node) Label() string {
	if n == nil {
		return "-"
	}
	switch n.Kind {
	case KindElement:
		return fmt.Sprintf("%s:%d", n.Tag, n.ID)
	case KindText:
		return fmt.Sprintf("text:%d", n.ID)
	default:
		return fmt.Sprintf("root:%d", n.ID)
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	p := n.Parent
	if p == nil {
		return
	}
	if i := p.indexOf(n); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// isAnchor reports whether n is an empty text node, the shape used for
// fragment boundaries.
func (n *Node) isAnchor() bool {
	return n.Kind == KindText && n.Text == ""
}

// Serialize renders n as HTML-like markup. Empty text nodes are skipped,
// props are written in key order and handlers are omitted.
func Serialize(n *Node) string {
	var b strings.Builder
	serialize(&b, n)
	return b.String()
}

func serialize(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindText:
		b.WriteString(n.Text)
		return
	case KindRoot:
		for _, c := range n.Children {
			serialize(b, c)
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, k := range sortedKeys(n.Props) {
		v := n.Props[k]
		if v == true {
			b.WriteString(" " + k)
			continue
		}
		fmt.Fprintf(b, " %s=%q", k, fmt.Sprint(v))
	}
	b.WriteByte('>')
	if vdom.IsVoidElement(n.Tag) {
		return
	}
	if len(n.Children) == 0 {
		b.WriteString(n.Text)
	}
	for _, c := range n.Children {
		serialize(b, c)
	}
	b.WriteString("</" + n.Tag + ">")
}

// Snapshot is a JSON-friendly copy of a node subtree.
type Snapshot struct {
	ID       int               `json:"id"`
	Kind     string            `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Events   []string          `json:"events,omitempty"`
	Children []Snapshot        `json:"children,omitempty"`
}

// Snap copies n and its descendants, skipping fragment anchors.
func Snap(n *Node) Snapshot {
	s := Snapshot{
		ID:   n.ID,
		Kind: n.Kind.String(),
		Tag:  n.Tag,
		Text: n.Text,
	}
	if len(n.Props) > 0 {
		s.Props = make(map[string]string, len(n.Props))
		for k, v := range n.Props {
			s.Props[k] = fmt.Sprint(v)
		}
	}
	s.Events = sortedKeys(n.Handlers)
	for _, c := range n.Children {
		if c.isAnchor() {
			continue
		}
		s.Children = append(s.Children, Snap(c))
	}
	return s
}

// Tree draws n as an ASCII tree.
func Tree(n *Node) string {
	t := tree.NewTree(tree.NodeString(describe(n)))
	addChildren(t, n)
	return t.String()
}

func addChildren(t *tree.Tree, n *Node) {
	for _, c := range n.Children {
		if c.isAnchor() {
			continue
		}
		child := t.AddChild(tree.NodeString(describe(c)))
		addChildren(child, c)
	}
}

func describe(n *Node) string {
	switch n.Kind {
	case KindText:
		return fmt.Sprintf("%q", n.Text)
	case KindRoot:
		return "#root"
	}
	if n.Text != "" {
		return fmt.Sprintf("%s %q", n.Tag, n.Text)
	}
	return n.Tag
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
