package vdom_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/sprout/pkg/host/memhost"
	"github.com/vango-dev/sprout/pkg/reactive"
	"github.com/vango-dev/sprout/pkg/vdom"
)

type renderCounts map[string][2]int

func countingRenderer(h *memhost.Host, counts renderCounts, opts ...vdom.Option) *vdom.Renderer {
	opts = append(opts, vdom.WithHooks(vdom.Hooks{
		OnRender: func(name string, initial bool) func() {
			c := counts[name]
			if initial {
				c[0]++
			} else {
				c[1]++
			}
			counts[name] = c
			return nil
		},
	}))
	return vdom.NewRenderer(h, opts...)
}

func counterComponent() *vdom.Component {
	return &vdom.Component{
		Name: "Counter",
		Setup: func(props *reactive.Proxy, ctx *vdom.SetupContext) map[string]any {
			count := ctx.Runtime().Ref(0)
			return map[string]any{
				"count": count,
				"inc":   func() { count.Set(count.Peek().(int) + 1) },
			}
		},
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("button", vdom.Props{"onClick": s.Get("inc")}, fmt.Sprint(s.Get("count")))
		},
	}
}

func TestComponentUpdatesAfterFlush(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	counts := renderCounts{}
	r := countingRenderer(h, counts)

	r.CreateApp(counterComponent(), nil).Mount(root)
	if got := h.Serialize(root); got != "<button>0</button>" {
		t.Fatalf("Serialize = %s", got)
	}

	btn := memhost.FindTag(root, "button")
	h.Trigger(btn, "click")
	h.Trigger(btn, "click")

	if got := h.Serialize(root); got != "<button>0</button>" {
		t.Errorf("updated before flush: %s", got)
	}
	if r.Scheduler().Len() != 1 {
		t.Errorf("queued jobs = %d, want 1", r.Scheduler().Len())
	}

	r.Scheduler().Loop().RunUntilIdle()

	if got := h.Serialize(root); got != "<button>2</button>" {
		t.Errorf("Serialize = %s, want <button>2</button>", got)
	}
	if c := counts["Counter"]; c != [2]int{1, 1} {
		t.Errorf("renders = %v, want one mount and one update", c)
	}
}

func TestNextTickAfterComponentUpdate(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	r := vdom.NewRenderer(h)
	r.CreateApp(counterComponent(), nil).Mount(root)

	h.Trigger(memhost.FindTag(root, "button"), "click")
	var seen string
	tick := r.Scheduler().NextTick(func() { seen = h.Serialize(root) })
	r.Scheduler().Loop().RunUntilIdle()

	if seen != "<button>1</button>" {
		t.Errorf("nextTick saw %s", seen)
	}
	select {
	case <-tick.Done():
	default:
		t.Error("tick not resolved")
	}
}

func TestChildSkipsUpdateWhenPropsUnchanged(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	counts := renderCounts{}
	r := countingRenderer(h, counts)
	rt := r.Runtime()

	label := rt.Ref("a")
	other := rt.Ref(0)
	onPing := func() { other.Set(other.Value().(int) + 1) }
	style := map[string]any{"color": "red"}

	child := &vdom.Component{
		Name: "Label",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("span", nil, fmt.Sprint(s.Get("label")))
		},
	}
	parent := &vdom.Component{
		Name: "Parent",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("div", nil,
				vdom.H(child, vdom.Props{
					"key":    "label",
					"label":  label.Value(),
					"onPing": onPing,
					"style":  style,
				}),
				vdom.H("i", vdom.Props{"key": "other"}, fmt.Sprint(other.Value())),
			)
		},
	}
	r.CreateApp(parent, nil).Mount(root)

	other.Set(1)
	r.Scheduler().Loop().RunUntilIdle()
	if c := counts["Label"]; c != [2]int{1, 0} {
		t.Errorf("child renders = %v, want no update", c)
	}
	if got := h.Serialize(root); got != "<div><span>a</span><i>1</i></div>" {
		t.Errorf("Serialize = %s", got)
	}

	label.Set("b")
	r.Scheduler().Loop().RunUntilIdle()
	if c := counts["Label"]; c != [2]int{1, 1} {
		t.Errorf("child renders = %v, want one update", c)
	}
	if got := h.Serialize(root); got != "<div><span>b</span><i>1</i></div>" {
		t.Errorf("Serialize = %s", got)
	}
}

func TestEmitCallsParentHandler(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	r := vdom.NewRenderer(h)

	child := &vdom.Component{
		Name: "Adder",
		Setup: func(props *reactive.Proxy, ctx *vdom.SetupContext) map[string]any {
			return map[string]any{
				"add": func() { ctx.Emit("add-item", 5) },
			}
		},
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("button", vdom.Props{"onClick": s.Get("add")}, "+")
		},
	}

	var got []any
	r.Render(vdom.H(child, vdom.Props{
		"onAddItem": func(args ...any) { got = args },
	}), root)

	h.Trigger(memhost.FindTag(root, "button"), "click")
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("handler args = %v, want [5]", got)
	}
}

func TestProvideInject(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	var logs bytes.Buffer
	r := vdom.NewRenderer(h, vdom.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var theme, size, missing any
	leaf := &vdom.Component{
		Name: "Leaf",
		Setup: func(props *reactive.Proxy, ctx *vdom.SetupContext) map[string]any {
			theme = ctx.Inject("theme")
			size = ctx.Inject("size", func() any { return "md" })
			missing = ctx.Inject("nope")
			return nil
		},
		Render: func(s *vdom.Scope) *vdom.VNode { return vdom.Text("leaf") },
	}
	middle := &vdom.Component{
		Name:   "Middle",
		Render: func(s *vdom.Scope) *vdom.VNode { return vdom.H(leaf, nil) },
	}
	top := &vdom.Component{
		Name: "Top",
		Setup: func(props *reactive.Proxy, ctx *vdom.SetupContext) map[string]any {
			ctx.Provide("theme", "dark")
			return nil
		},
		Render: func(s *vdom.Scope) *vdom.VNode { return vdom.H(middle, nil) },
	}
	r.Render(vdom.H(top, nil), root)

	if theme != "dark" {
		t.Errorf("theme = %v, want dark", theme)
	}
	if size != "md" {
		t.Errorf("size = %v, want md default", size)
	}
	if missing != nil {
		t.Errorf("missing = %v, want nil", missing)
	}
	if !strings.Contains(logs.String(), "E102") {
		t.Errorf("expected E102 warning, got %q", logs.String())
	}
	if got := h.Serialize(root); got != "leaf" {
		t.Errorf("Serialize = %q", got)
	}
}

func TestSlots(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	r := vdom.NewRenderer(h)

	layout := &vdom.Component{
		Name: "Layout",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("div", nil,
				s.RenderSlot("header", map[string]any{"title": "T"}),
				s.RenderSlot("default", nil),
				s.RenderSlot("missing", nil),
			)
		},
	}
	r.Render(vdom.H(layout, nil, vdom.Slots{
		"header": func(props map[string]any) []*vdom.VNode {
			return []*vdom.VNode{vdom.H("h1", nil, fmt.Sprint(props["title"]))}
		},
		"default": func(map[string]any) []*vdom.VNode {
			return []*vdom.VNode{vdom.H("p", nil, "body")}
		},
	}), root)

	if got := h.Serialize(root); got != "<div><h1>T</h1><p>body</p></div>" {
		t.Errorf("Serialize = %s", got)
	}
}

func TestScopeReadsStatePropsAndPublic(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	var logs bytes.Buffer
	r := vdom.NewRenderer(h, vdom.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var scope *vdom.Scope
	comp := &vdom.Component{
		Name: "Probe",
		Setup: func(props *reactive.Proxy, ctx *vdom.SetupContext) map[string]any {
			return map[string]any{"msg": ctx.Runtime().Ref("hello")}
		},
		Render: func(s *vdom.Scope) *vdom.VNode {
			scope = s
			return vdom.H("p", nil, fmt.Sprint(s.Get("msg"), " ", s.Get("name")))
		},
	}
	r.Render(vdom.H(comp, vdom.Props{"name": "go"}), root)

	if got := h.Serialize(root); got != "<p>hello go</p>" {
		t.Fatalf("Serialize = %s", got)
	}
	if scope.Get("$el") != memhost.FindTag(root, "p") {
		t.Error("$el should be the root host node")
	}
	if _, ok := scope.Get("$props").(*reactive.Proxy); !ok {
		t.Error("$props should be the props proxy")
	}

	if !scope.Set("msg", "bye") {
		t.Error("Set on setup state should succeed")
	}
	r.Scheduler().Loop().RunUntilIdle()
	if got := h.Serialize(root); got != "<p>bye go</p>" {
		t.Errorf("Serialize = %s", got)
	}

	if scope.Set("name", "x") {
		t.Error("Set on a prop should fail")
	}
	if !strings.Contains(logs.String(), "E100") {
		t.Errorf("expected E100 warning, got %q", logs.String())
	}
}

func TestUnmountStopsRenderEffect(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	unmounted := []string{}
	r := vdom.NewRenderer(h, vdom.WithHooks(vdom.Hooks{
		OnUnmount: func(name string) { unmounted = append(unmounted, name) },
	}))
	state := r.Runtime().Ref(0)

	comp := &vdom.Component{
		Name: "Watcher",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("p", nil, fmt.Sprint(state.Value()))
		},
	}
	app := r.CreateApp(comp, nil)
	app.Mount(root)
	inst := app.Instance()

	state.Set(1)
	if r.Scheduler().Len() != 1 {
		t.Fatalf("queued jobs = %d, want 1", r.Scheduler().Len())
	}
	app.Unmount()

	if r.Scheduler().Len() != 0 {
		t.Errorf("queued jobs after unmount = %d, want 0", r.Scheduler().Len())
	}
	if !inst.IsUnmounted {
		t.Error("instance should be marked unmounted")
	}
	state.Set(2)
	r.Scheduler().Loop().RunUntilIdle()
	if got := h.Serialize(root); got != "" {
		t.Errorf("Serialize = %q, want empty", got)
	}
	if len(unmounted) != 1 || unmounted[0] != "Watcher" {
		t.Errorf("unmounted = %v", unmounted)
	}
}

func TestKeyedComponentsMoveHostNodes(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	r := vdom.NewRenderer(h)

	item := &vdom.Component{
		Name: "Item",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("li", nil, fmt.Sprint(s.Get("label")))
		},
	}
	list := func(labels ...string) *vdom.VNode {
		children := make([]*vdom.VNode, len(labels))
		for i, l := range labels {
			children[i] = vdom.H(item, vdom.Props{"key": l, "label": l})
		}
		return vdom.H("ul", nil, children)
	}

	r.Render(list("a", "b", "c"), root)
	h.ResetOps()
	r.Render(list("c", "a", "b"), root)

	if got := h.Serialize(root); got != "<ul><li>c</li><li>a</li><li>b</li></ul>" {
		t.Errorf("Serialize = %s", got)
	}
	if h.Count(memhost.OpMove) != 1 {
		t.Errorf("moves = %d, want 1: %v", h.Count(memhost.OpMove), h.Lines())
	}
	if h.Count(memhost.OpCreate) != 0 {
		t.Errorf("creates = %d, want 0", h.Count(memhost.OpCreate))
	}
}

func TestNilRenderBecomesEmptyText(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	r := vdom.NewRenderer(h)

	show := r.Runtime().Ref(false)
	comp := &vdom.Component{
		Name: "Maybe",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.If(show.Value().(bool), vdom.H("b", nil, "on"))
		},
	}
	r.Render(vdom.H("div", nil, vdom.H(comp, nil)), root)
	if got := h.Serialize(root); got != "<div></div>" {
		t.Errorf("Serialize = %s", got)
	}

	show.Set(true)
	r.Scheduler().Loop().RunUntilIdle()
	if got := h.Serialize(root); got != "<div><b>on</b></div>" {
		t.Errorf("Serialize = %s", got)
	}
}

func TestRenderPanicPropagatesFromFlush(t *testing.T) {
	h := memhost.New()
	root := h.CreateRoot()
	r := vdom.NewRenderer(h)

	boom := r.Runtime().Ref(false)
	comp := &vdom.Component{
		Name: "Boom",
		Render: func(s *vdom.Scope) *vdom.VNode {
			if boom.Value().(bool) {
				panic("render failed")
			}
			return vdom.Text("ok")
		},
	}
	r.Render(vdom.H(comp, nil), root)

	boom.Set(true)
	defer func() {
		if rec := recover(); rec == nil {
			t.Error("expected panic from RunUntilIdle")
		}
		if r.Scheduler().Len() != 0 {
			t.Errorf("queue not reset: %d", r.Scheduler().Len())
		}
	}()
	r.Scheduler().Loop().RunUntilIdle()
}
