package memhost

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestInsertAndMove(t *testing.T) {
	h := New()
	root := h.CreateRoot()
	a := h.CreateElement("li").(*Node)
	b := h.CreateElement("li").(*Node)

	h.Insert(a, root, nil)
	h.Insert(b, root, nil)
	h.Insert(b, root, a)

	if root.Children[0] != b || root.Children[1] != a {
		t.Fatalf("children = %v, want [b a]", root.Children)
	}
	if got := h.Count(OpMove); got != 1 {
		t.Errorf("moves = %d, want 1", got)
	}
	want := []string{
		"create li:2",
		"create li:3",
		"insert li:2 -> root:1",
		"insert li:3 -> root:1",
		"move li:3 -> root:1 before li:2",
	}
	got := h.Lines()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("lines:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestRemoveDetaches(t *testing.T) {
	h := New()
	root := h.CreateRoot()
	n := h.CreateText("x").(*Node)
	h.Insert(n, root, nil)
	h.Remove(n)

	if len(root.Children) != 0 || n.Parent != nil {
		t.Error("node should be detached")
	}
}

func TestPatchPropSplitsHandlers(t *testing.T) {
	h := New()
	el := h.CreateElement("button").(*Node)
	clicked := false

	h.PatchProp(el, "class", nil, "primary")
	h.PatchProp(el, "onClick", nil, func() { clicked = true })

	if el.Props["class"] != "primary" {
		t.Errorf("class = %v", el.Props["class"])
	}
	if !h.Trigger(el, "click") || !clicked {
		t.Error("click handler not called")
	}

	h.PatchProp(el, "onClick", nil, nil)
	h.PatchProp(el, "class", "primary", nil)
	if h.Trigger(el, "click") {
		t.Error("handler should be removed")
	}
	if _, ok := el.Props["class"]; ok {
		t.Error("class should be removed")
	}

	ops := h.Ops()
	if ops[1].Next != "<func>" {
		t.Errorf("handler op value = %q, want <func>", ops[1].Next)
	}
}

func TestSetElementTextReplacesChildren(t *testing.T) {
	h := New()
	root := h.CreateRoot()
	p := h.CreateElement("p").(*Node)
	h.Insert(p, root, nil)
	h.Insert(h.CreateElement("b"), p, nil)
	h.SetElementText(p, "plain")

	if len(p.Children) != 0 {
		t.Errorf("children = %d, want 0", len(p.Children))
	}
	if got := Serialize(root); got != "<p>plain</p>" {
		t.Errorf("Serialize = %s", got)
	}
}

func TestSerialize(t *testing.T) {
	h := New()
	root := h.CreateRoot()
	div := h.CreateElement("div").(*Node)
	h.PatchProp(div, "id", nil, "app")
	h.PatchProp(div, "hidden", nil, true)
	h.Insert(div, root, nil)
	h.Insert(h.CreateText(""), div, nil)
	h.Insert(h.CreateElement("br"), div, nil)
	h.Insert(h.CreateText("hi"), div, nil)

	if got := h.Serialize(root); got != `<div hidden id="app"><br>hi</div>` {
		t.Errorf("Serialize = %s", got)
	}
}

func TestSnapshotJSON(t *testing.T) {
	h := New()
	root := h.CreateRoot()
	ul := h.CreateElement("ul").(*Node)
	h.Insert(ul, root, nil)
	h.Insert(h.CreateText(""), ul, nil)
	li := h.CreateElement("li").(*Node)
	h.SetElementText(li, "a")
	h.PatchProp(li, "onClick", nil, func() {})
	h.Insert(li, ul, nil)

	data, err := json.Marshal(h.Snapshot(root))
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Children) != 1 || len(snap.Children[0].Children) != 1 {
		t.Fatalf("snapshot = %s", data)
	}
	got := snap.Children[0].Children[0]
	if got.Tag != "li" || got.Text != "a" || len(got.Events) != 1 || got.Events[0] != "click" {
		t.Errorf("li snapshot = %+v", got)
	}
}

func TestTreeDump(t *testing.T) {
	h := New()
	root := h.CreateRoot()
	ul := h.CreateElement("ul").(*Node)
	h.Insert(ul, root, nil)
	li := h.CreateElement("li").(*Node)
	h.SetElementText(li, "first")
	h.Insert(li, ul, nil)

	out := h.Tree(root)
	for _, want := range []string{"#root", "ul", `li "first"`} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}

func TestSubscribe(t *testing.T) {
	h := New()
	var seen []OpKind
	unsubscribe := h.Subscribe(func(op Op) { seen = append(seen, op.Kind) })

	h.CreateElement("p")
	unsubscribe()
	h.CreateElement("p")

	if len(seen) != 1 || seen[0] != OpCreate {
		t.Errorf("seen = %v, want [create]", seen)
	}
}

func TestResetOps(t *testing.T) {
	h := New()
	h.CreateElement("p")
	h.ResetOps()
	if len(h.Ops()) != 0 {
		t.Error("ops should be empty")
	}
	h.CreateText("x")
	if ops := h.Ops(); ops[0].Seq != 1 {
		t.Errorf("seq = %d, want 1", ops[0].Seq)
	}
}
