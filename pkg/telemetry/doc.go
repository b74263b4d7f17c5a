// Package telemetry turns scheduler and renderer activity into Prometheus
// metrics and OpenTelemetry spans.
//
// Both collectors expose hook sets that plug straight into the scheduler
// and the renderer:
//
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	tr := telemetry.NewTracer()
//	sched := scheduler.New(loop, scheduler.WithHooks(
//	    telemetry.MergeSchedulerHooks(m.SchedulerHooks(), tr.SchedulerHooks()),
//	))
//	r := vdom.NewRenderer(host, vdom.WithScheduler(sched), vdom.WithHooks(
//	    telemetry.MergeRendererHooks(m.RendererHooks(), tr.RendererHooks()),
//	))
//
// # Metrics
//
//   - sprout_jobs_queued_total{component,deduped}
//   - sprout_flushes_total, sprout_flush_jobs, sprout_flush_duration_seconds
//   - sprout_renders_total{component,phase}, sprout_render_duration_seconds
//   - sprout_unmounts_total{component}, sprout_mounted_components
//   - sprout_host_ops_total{op}
//
// Expose them with promhttp.HandlerFor on the same registry.
//
// # Tracing
//
// Each component render becomes a "sprout.render" span and each flush a
// "sprout.flush" span. The tracer comes from the global provider unless
// WithTracerProvider is given.
package telemetry
