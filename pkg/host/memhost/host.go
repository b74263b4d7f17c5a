package memhost

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/sprout/pkg/vdom"
)

// OpKind names a host primitive.
type OpKind string

const (
	OpCreate         OpKind = "create"
	OpCreateText     OpKind = "createText"
	OpSetText        OpKind = "setText"
	OpSetElementText OpKind = "setElementText"
	OpInsert         OpKind = "insert"
	OpMove           OpKind = "move"
	OpRemove         OpKind = "remove"
	OpPatchProp      OpKind = "patchProp"
)

// Op is one logged host operation.
type Op struct {
	Seq    int    `json:"seq"`
	Kind   OpKind `json:"kind"`
	Node   string `json:"node"`
	Parent string `json:"parent,omitempty"`
	Anchor string `json:"anchor,omitempty"`
	Key    string `json:"key,omitempty"`
	Prev   string `json:"prev,omitempty"`
	Next   string `json:"next,omitempty"`
	Text   string `json:"text,omitempty"`
}

// String renders the op as a single trace line.
func (o Op) String() string {
	switch o.Kind {
	case OpCreate, OpRemove:
		return fmt.Sprintf("%s %s", o.Kind, o.Node)
	case OpCreateText, OpSetText, OpSetElementText:
		return fmt.Sprintf("%s %s %q", o.Kind, o.Node, o.Text)
	case OpInsert, OpMove:
		if o.Anchor == "" {
			return fmt.Sprintf("%s %s -> %s", o.Kind, o.Node, o.Parent)
		}
		return fmt.Sprintf("%s %s -> %s before %s", o.Kind, o.Node, o.Parent, o.Anchor)
	case OpPatchProp:
		return fmt.Sprintf("%s %s %s: %s -> %s", o.Kind, o.Node, o.Key, o.Prev, o.Next)
	default:
		return string(o.Kind)
	}
}

// Host is an in-memory vdom.Host. It is safe for concurrent readers while
// the renderer runs on one goroutine.
type Host struct {
	mu     sync.Mutex
	nextID int
	ops    []Op
	subs   map[int]func(Op)
	subSeq int
	logger *slog.Logger
}

var _ vdom.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithLogger logs every op at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// New creates an empty host.
func New(opts ...Option) *Host {
	h := &Host{subs: make(map[int]func(Op))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateRoot returns a fresh container. It is not logged.
func (h *Host) CreateRoot() *Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &Node{ID: h.allocID(), Kind: KindRoot}
}

func (h *Host) allocID() int {
	h.nextID++
	return h.nextID
}

func (h *Host) record(op Op) {
	op.Seq = len(h.ops) + 1
	h.ops = append(h.ops, op)
	subs := make([]func(Op), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	if h.logger != nil {
		h.logger.Debug("host op", "op", op.String())
	}
	h.mu.Unlock()
	for _, fn := range subs {
		fn(op)
	}
	h.mu.Lock()
}

func (h *Host) CreateElement(tag string) vdom.Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := &Node{ID: h.allocID(), Kind: KindElement, Tag: tag}
	h.record(Op{Kind: OpCreate, Node: n.Label()})
	return n
}

func (h *Host) CreateText(text string) vdom.Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := &Node{ID: h.allocID(), Kind: KindText, Text: text}
	h.record(Op{Kind: OpCreateText, Node: n.Label(), Text: text})
	return n
}

func (h *Host) SetText(node vdom.Node, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := node.(*Node)
	n.Text = text
	h.record(Op{Kind: OpSetText, Node: n.Label(), Text: text})
}

// SetElementText replaces all children of node with text.
func (h *Host) SetElementText(node vdom.Node, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := node.(*Node)
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	n.Text = text
	h.record(Op{Kind: OpSetElementText, Node: n.Label(), Text: text})
}

// Insert places node before anchor in container, or appends for a nil
// anchor. Inserting an attached node is logged as a move.
func (h *Host) Insert(node, container, anchor vdom.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := node.(*Node)
	parent := container.(*Node)

	kind := OpInsert
	if n.Parent != nil {
		kind = OpMove
		n.detach()
	}

	var a *Node
	if anchor != nil {
		a = anchor.(*Node)
	}
	idx := -1
	if a != nil {
		idx = parent.indexOf(a)
	}
	if idx < 0 {
		parent.Children = append(parent.Children, n)
	} else {
		parent.Children = append(parent.Children, nil)
		copy(parent.Children[idx+1:], parent.Children[idx:])
		parent.Children[idx] = n
	}
	n.Parent = parent

	op := Op{Kind: kind, Node: n.Label(), Parent: parent.Label()}
	if a != nil {
		op.Anchor = a.Label()
	}
	h.record(op)
}

func (h *Host) Remove(node vdom.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := node.(*Node)
	n.detach()
	h.record(Op{Kind: OpRemove, Node: n.Label()})
}

// PatchProp stores props and event handlers separately. A nil next
// deletes the entry.
func (h *Host) PatchProp(node vdom.Node, key string, prev, next any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := node.(*Node)
	if vdom.IsOn(key) {
		ev := vdom.EventName(key)
		if next == nil {
			delete(n.Handlers, ev)
		} else {
			if n.Handlers == nil {
				n.Handlers = make(map[string]any)
			}
			n.Handlers[ev] = next
		}
	} else {
		if next == nil {
			delete(n.Props, key)
		} else {
			if n.Props == nil {
				n.Props = make(map[string]any)
			}
			n.Props[key] = next
		}
	}
	h.record(Op{
		Kind: OpPatchProp,
		Node: n.Label(),
		Key:  key,
		Prev: formatValue(prev),
		Next: formatValue(next),
	})
}

func formatValue(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case func(), func(any), func(...any):
		return "<func>"
	}
	return fmt.Sprint(v)
}

// Ops returns a copy of the op log.
func (h *Host) Ops() []Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Op, len(h.ops))
	copy(out, h.ops)
	return out
}

// Lines returns the op log as trace lines.
func (h *Host) Lines() []string {
	ops := h.Ops()
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.String()
	}
	return out
}

// ResetOps clears the op log.
func (h *Host) ResetOps() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = nil
}

// Count returns how many logged ops have kind.
func (h *Host) Count(kind OpKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, op := range h.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Subscribe calls fn for every op recorded from now on. The returned func
// removes the subscription.
func (h *Host) Subscribe(fn func(Op)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subSeq++
	id := h.subSeq
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Serialize renders the subtree under n.
func (h *Host) Serialize(n *Node) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Serialize(n)
}

// Snapshot copies the subtree under n.
func (h *Host) Snapshot(n *Node) Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snap(n)
}

// Tree draws the subtree under n.
func (h *Host) Tree(n *Node) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Tree(n)
}

// Trigger calls the handler bound to event on n. It reports whether a
// handler was found.
func (h *Host) Trigger(n *Node, event string, args ...any) bool {
	h.mu.Lock()
	handler, ok := n.Handlers[event]
	h.mu.Unlock()
	if !ok {
		return false
	}
	switch fn := handler.(type) {
	case func():
		fn()
	case func(...any):
		fn(args...)
	case func(any):
		var arg any
		if len(args) > 0 {
			arg = args[0]
		}
		fn(arg)
	default:
		return false
	}
	return true
}

// Find returns the first node under n, depth first, for which match holds.
func Find(n *Node, match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.Children {
		if f := Find(c, match); f != nil {
			return f
		}
	}
	return nil
}

// FindTag returns the first element under n with tag.
func FindTag(n *Node, tag string) *Node {
	return Find(n, func(x *Node) bool { return x.Kind == KindElement && x.Tag == tag })
}
