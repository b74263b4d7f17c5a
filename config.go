package sprout

import (
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/sprout/internal/config"
	"github.com/vango-dev/sprout/pkg/telemetry"
)

// Config configures an App.
type Config struct {
	// Logger is shared by the runtime, scheduler and renderer.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics, when set, observes scheduler flushes and renders.
	Metrics *telemetry.Metrics

	// Tracer, when set, records render and flush spans.
	Tracer *telemetry.Tracer

	// QueueSize is the loop's dispatch capacity.
	// Default: scheduler.DefaultQueueSize
	QueueSize int
}

// FromConfig builds an App from a loaded sprout.json or sprout.toml.
// Metrics register on reg, or on the default registerer when reg is nil.
func FromConfig(host Host, c *config.Config, reg prometheus.Registerer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cfg := Config{Logger: NewLogger(c.Log, os.Stderr)}
	if c.Metrics.Enabled {
		opts := []telemetry.MetricsOption{telemetry.WithNamespace(c.Metrics.Namespace)}
		if reg != nil {
			opts = append(opts, telemetry.WithRegistry(reg))
		}
		cfg.Metrics = telemetry.NewMetrics(opts...)
	}
	if c.Tracing.Enabled {
		cfg.Tracer = telemetry.NewTracer(telemetry.WithTracerName(c.Tracing.TracerName))
	}
	return New(host, cfg), nil
}

// NewLogger builds the logger described by c, writing to w.
func NewLogger(c config.LogConfig, w io.Writer) *slog.Logger {
	lc := config.Config{Log: c}
	opts := &slog.HandlerOptions{Level: lc.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
