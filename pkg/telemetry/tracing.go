package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/sprout/pkg/scheduler"
	"github.com/vango-dev/sprout/pkg/vdom"
)

// Default tracer name for sprout runtimes.
const defaultTracerName = "sprout"

// TraceConfig configures span emission.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "sprout").
	TracerName string

	// Provider overrides the global tracer provider.
	Provider trace.TracerProvider

	// Context is the parent context for emitted spans.
	Context context.Context
}

// TraceOption configures a Tracer.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		if name != "" {
			c.TracerName = name
		}
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TraceOption {
	return func(c *TraceConfig) {
		c.Provider = tp
	}
}

// WithParentContext parents every span under ctx.
func WithParentContext(ctx context.Context) TraceOption {
	return func(c *TraceConfig) {
		c.Context = ctx
	}
}

// Tracer emits spans for renders and flushes.
type Tracer struct {
	tracer trace.Tracer
	ctx    context.Context
}

// NewTracer resolves a tracer from the configured or global provider.
//
// Configure the global provider in main() before creating runtimes:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracer(opts ...TraceOption) *Tracer {
	config := TraceConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer: provider.Tracer(config.TracerName),
		ctx:    config.Context,
	}
}

// RendererHooks opens a span per component render, closed once the patch
// finishes.
func (t *Tracer) RendererHooks() vdom.Hooks {
	return vdom.Hooks{
		OnRender: func(component string, initial bool) func() {
			_, span := t.tracer.Start(t.ctx, "sprout.render",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String("sprout.component", component),
					attribute.Bool("sprout.initial", initial),
				),
			)
			return func() { span.End() }
		},
	}
}

// SchedulerHooks records each flush as a span spanning its run time.
func (t *Tracer) SchedulerHooks() scheduler.Hooks {
	return scheduler.Hooks{
		OnFlush: func(ran int, elapsed time.Duration) {
			end := time.Now()
			_, span := t.tracer.Start(t.ctx, "sprout.flush",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithTimestamp(end.Add(-elapsed)),
				trace.WithAttributes(attribute.Int("sprout.jobs", ran)),
			)
			span.End(trace.WithTimestamp(end))
		},
	}
}

// Span runs fn inside a span named name and records a returned error.
func (t *Tracer) Span(ctx context.Context, name string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}
