package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/sprout/pkg/scheduler"
	"github.com/vango-dev/sprout/pkg/vdom"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sprout").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "sprout",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the runtime collectors.
type Metrics struct {
	jobsQueued     *prometheus.CounterVec
	flushesTotal   prometheus.Counter
	flushJobs      prometheus.Histogram
	flushDuration  prometheus.Histogram
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	unmountsTotal  *prometheus.CounterVec
	mounted        prometheus.Gauge
	hostOps        *prometheus.CounterVec
}

// NewMetrics registers the collectors on the configured registry.
// Registering twice on one registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		jobsQueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "jobs_queued_total",
			Help:        "Update jobs submitted to the scheduler",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "deduped"}),

		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Scheduler flushes that ran at least one job",
			ConstLabels: config.ConstLabels,
		}),

		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_jobs",
			Help:        "Jobs run per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Component renders by phase",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "phase"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render and patch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		unmountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unmounts_total",
			Help:        "Component instances unmounted",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		mounted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_components",
			Help:        "Component instances currently mounted",
			ConstLabels: config.ConstLabels,
		}),

		hostOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_total",
			Help:        "Host primitives issued by the renderer",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
	}
}

// SchedulerHooks records queueing and flushes.
func (m *Metrics) SchedulerHooks() scheduler.Hooks {
	return scheduler.Hooks{
		OnQueue: func(job *scheduler.Job, deduped bool) {
			m.jobsQueued.WithLabelValues(job.Name(), strconv.FormatBool(deduped)).Inc()
		},
		OnFlush: func(ran int, elapsed time.Duration) {
			m.flushesTotal.Inc()
			m.flushJobs.Observe(float64(ran))
			m.flushDuration.Observe(elapsed.Seconds())
		},
	}
}

// RendererHooks records renders and unmounts.
func (m *Metrics) RendererHooks() vdom.Hooks {
	return vdom.Hooks{
		OnRender: func(component string, initial bool) func() {
			phase := "update"
			if initial {
				phase = "mount"
				m.mounted.Inc()
			}
			m.rendersTotal.WithLabelValues(component, phase).Inc()
			start := time.Now()
			return func() {
				m.renderDuration.WithLabelValues(component).Observe(time.Since(start).Seconds())
			}
		},
		OnUnmount: func(component string) {
			m.unmountsTotal.WithLabelValues(component).Inc()
			m.mounted.Dec()
		},
	}
}

// ObserveHostOp counts one host primitive.
func (m *Metrics) ObserveHostOp(op string) {
	m.hostOps.WithLabelValues(op).Inc()
}

// MergeSchedulerHooks calls every non-nil hook in order.
func MergeSchedulerHooks(hooks ...scheduler.Hooks) scheduler.Hooks {
	return scheduler.Hooks{
		OnQueue: func(job *scheduler.Job, deduped bool) {
			for _, h := range hooks {
				if h.OnQueue != nil {
					h.OnQueue(job, deduped)
				}
			}
		},
		OnFlush: func(ran int, elapsed time.Duration) {
			for _, h := range hooks {
				if h.OnFlush != nil {
					h.OnFlush(ran, elapsed)
				}
			}
		},
	}
}

// MergeRendererHooks calls every non-nil hook in order. Render completion
// callbacks run in reverse order.
func MergeRendererHooks(hooks ...vdom.Hooks) vdom.Hooks {
	return vdom.Hooks{
		OnRender: func(component string, initial bool) func() {
			var done []func()
			for _, h := range hooks {
				if h.OnRender == nil {
					continue
				}
				if d := h.OnRender(component, initial); d != nil {
					done = append(done, d)
				}
			}
			return func() {
				for i := len(done) - 1; i >= 0; i-- {
					done[i]()
				}
			}
		},
		OnUnmount: func(component string) {
			for _, h := range hooks {
				if h.OnUnmount != nil {
					h.OnUnmount(component)
				}
			}
		},
	}
}
