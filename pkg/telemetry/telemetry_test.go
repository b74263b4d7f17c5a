package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/sprout/pkg/host/memhost"
	"github.com/vango-dev/sprout/pkg/scheduler"
	"github.com/vango-dev/sprout/pkg/vdom"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

// recordingTracer keeps span names and hands out no-op spans.
type recordingTracer struct {
	noop.Tracer
	names []string
}

func (r *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.names = append(r.names, name)
	return ctx, noop.Span{}
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

type wiring struct {
	host  *memhost.Host
	root  *memhost.Node
	r     *vdom.Renderer
	m     *Metrics
	spans *recordingTracer
}

func newWiring(t *testing.T) *wiring {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	spans := &recordingTracer{}
	tr := NewTracer(WithTracerProvider(&recordingProvider{tracer: spans}))

	sched := scheduler.New(scheduler.NewLoop(), scheduler.WithHooks(
		MergeSchedulerHooks(m.SchedulerHooks(), tr.SchedulerHooks()),
	))
	h := memhost.New()
	h.Subscribe(func(op memhost.Op) { m.ObserveHostOp(string(op.Kind)) })
	r := vdom.NewRenderer(h,
		vdom.WithScheduler(sched),
		vdom.WithHooks(MergeRendererHooks(m.RendererHooks(), tr.RendererHooks())),
	)
	return &wiring{host: h, root: h.CreateRoot(), r: r, m: m, spans: spans}
}

func TestMetricsFollowComponentLifecycle(t *testing.T) {
	w := newWiring(t)
	count := w.r.Runtime().Ref(0)
	comp := &vdom.Component{
		Name: "Counter",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("p", nil, fmt.Sprint(count.Value()))
		},
	}
	app := w.r.CreateApp(comp, nil)
	app.Mount(w.root)

	count.Set(1)
	count.Set(2)
	w.r.Scheduler().Loop().RunUntilIdle()

	if got := metricCounterValue(t, w.m.rendersTotal.WithLabelValues("Counter", "mount")); got != 1 {
		t.Errorf("renders_total(mount)=%v, want 1", got)
	}
	if got := metricCounterValue(t, w.m.rendersTotal.WithLabelValues("Counter", "update")); got != 1 {
		t.Errorf("renders_total(update)=%v, want 1", got)
	}
	if got := metricCounterValue(t, w.m.jobsQueued.WithLabelValues("Counter", "false")); got != 1 {
		t.Errorf("jobs_queued_total(deduped=false)=%v, want 1", got)
	}
	if got := metricCounterValue(t, w.m.jobsQueued.WithLabelValues("Counter", "true")); got != 1 {
		t.Errorf("jobs_queued_total(deduped=true)=%v, want 1", got)
	}
	if got := metricCounterValue(t, w.m.flushesTotal); got != 1 {
		t.Errorf("flushes_total=%v, want 1", got)
	}
	if got := metricGaugeValue(t, w.m.mounted); got != 1 {
		t.Errorf("mounted_components=%v, want 1", got)
	}
	if got := metricCounterValue(t, w.m.hostOps.WithLabelValues("setElementText")); got != 2 {
		t.Errorf("host_ops_total(setElementText)=%v, want 2", got)
	}

	app.Unmount()
	if got := metricGaugeValue(t, w.m.mounted); got != 0 {
		t.Errorf("mounted_components=%v, want 0", got)
	}
	if got := metricCounterValue(t, w.m.unmountsTotal.WithLabelValues("Counter")); got != 1 {
		t.Errorf("unmounts_total=%v, want 1", got)
	}
}

func TestTracerEmitsRenderAndFlushSpans(t *testing.T) {
	w := newWiring(t)
	flag := w.r.Runtime().Ref(false)
	comp := &vdom.Component{
		Name: "Toggle",
		Render: func(s *vdom.Scope) *vdom.VNode {
			return vdom.H("p", nil, fmt.Sprint(flag.Value()))
		},
	}
	w.r.CreateApp(comp, nil).Mount(w.root)
	flag.Set(true)
	w.r.Scheduler().Loop().RunUntilIdle()

	want := []string{"sprout.render", "sprout.render", "sprout.flush"}
	if fmt.Sprint(w.spans.names) != fmt.Sprint(want) {
		t.Errorf("spans = %v, want %v", w.spans.names, want)
	}
}

func TestTracerSpanRecordsError(t *testing.T) {
	spans := &recordingTracer{}
	tr := NewTracer(WithTracerProvider(&recordingProvider{tracer: spans}))

	boom := errors.New("boom")
	err := tr.Span(context.Background(), "sprout.replay", func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Span() error = %v, want boom", err)
	}
	if len(spans.names) != 1 || spans.names[0] != "sprout.replay" {
		t.Errorf("spans = %v", spans.names)
	}
}

func TestMergeRendererHooksReverseDone(t *testing.T) {
	var order []string
	hook := func(name string) vdom.Hooks {
		return vdom.Hooks{OnRender: func(string, bool) func() {
			order = append(order, "start "+name)
			return func() { order = append(order, "end "+name) }
		}}
	}
	merged := MergeRendererHooks(hook("a"), vdom.Hooks{}, hook("b"))
	merged.OnRender("C", true)()
	merged.OnUnmount("C")

	want := "[start a start b end b end a]"
	if fmt.Sprint(order) != want {
		t.Errorf("order = %v, want %s", order, want)
	}
}

func TestFlushHookElapsed(t *testing.T) {
	var got time.Duration = -1
	h := MergeSchedulerHooks(scheduler.Hooks{OnFlush: func(_ int, d time.Duration) { got = d }})
	h.OnFlush(1, time.Millisecond)
	if got != time.Millisecond {
		t.Errorf("elapsed = %v", got)
	}
}
