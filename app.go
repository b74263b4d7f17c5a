package sprout

import (
	"context"
	"log/slog"

	"github.com/vango-dev/sprout/pkg/reactive"
	"github.com/vango-dev/sprout/pkg/scheduler"
	"github.com/vango-dev/sprout/pkg/telemetry"
	"github.com/vango-dev/sprout/pkg/vdom"
)

// App owns one loop and everything that runs on it.
//
// Mount and state changes must happen on the loop goroutine: inside Call
// or Dispatch while Run is serving, or on the caller's goroutine followed by
// Flush when Run is not used.
type App struct {
	loop     *scheduler.Loop
	rt       *reactive.Runtime
	sched    *scheduler.Scheduler
	renderer *vdom.Renderer
	logger   *slog.Logger

	mounted map[vdom.Node]*vdom.App
}

// New creates an App rendering into host.
func New(host Host, cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var schedHooks []scheduler.Hooks
	var renderHooks []vdom.Hooks
	if cfg.Metrics != nil {
		schedHooks = append(schedHooks, cfg.Metrics.SchedulerHooks())
		renderHooks = append(renderHooks, cfg.Metrics.RendererHooks())
	}
	if cfg.Tracer != nil {
		schedHooks = append(schedHooks, cfg.Tracer.SchedulerHooks())
		renderHooks = append(renderHooks, cfg.Tracer.RendererHooks())
	}

	loopOpts := []scheduler.LoopOption{scheduler.WithLoopLogger(logger.With("component", "loop"))}
	if cfg.QueueSize > 0 {
		loopOpts = append(loopOpts, scheduler.WithQueueSize(cfg.QueueSize))
	}
	loop := scheduler.NewLoop(loopOpts...)

	a := &App{
		loop:    loop,
		rt:      reactive.NewRuntime(reactive.WithLogger(logger.With("component", "reactive"))),
		logger:  logger,
		mounted: make(map[vdom.Node]*vdom.App),
	}
	a.sched = scheduler.New(loop,
		scheduler.WithLogger(logger.With("component", "scheduler")),
		scheduler.WithHooks(telemetry.MergeSchedulerHooks(schedHooks...)))
	a.renderer = vdom.NewRenderer(host,
		vdom.WithRuntime(a.rt),
		vdom.WithScheduler(a.sched),
		vdom.WithLogger(logger.With("component", "renderer")),
		vdom.WithHooks(telemetry.MergeRendererHooks(renderHooks...)))
	return a
}

// Runtime returns the reactive runtime.
func (a *App) Runtime() *Runtime { return a.rt }

// Scheduler returns the update scheduler.
func (a *App) Scheduler() *Scheduler { return a.sched }

// Loop returns the loop.
func (a *App) Loop() *Loop { return a.loop }

// Renderer returns the renderer.
func (a *App) Renderer() *vdom.Renderer { return a.renderer }

// Mount renders root into container, replacing whatever was mounted there.
func (a *App) Mount(root *Component, props Props, container vdom.Node) *vdom.App {
	if prev, ok := a.mounted[container]; ok {
		prev.Unmount()
	}
	va := a.renderer.CreateApp(root, props)
	va.Mount(container)
	a.mounted[container] = va
	return va
}

// Unmount tears down the component mounted in container.
func (a *App) Unmount(container vdom.Node) {
	if va, ok := a.mounted[container]; ok {
		va.Unmount()
		delete(a.mounted, container)
	}
}

// Flush runs pending updates when the loop is driven by hand.
func (a *App) Flush() {
	a.loop.RunUntilIdle()
}

// Run serves the loop until ctx ends or Close is called.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("loop started")
	defer a.logger.Debug("loop stopped")
	return a.loop.Run(ctx)
}

// Call runs fn on the loop and waits for it and the updates it caused.
func (a *App) Call(ctx context.Context, fn func()) error {
	return a.loop.Call(ctx, fn)
}

// Dispatch queues fn on the loop without waiting.
func (a *App) Dispatch(fn func()) error {
	return a.loop.Dispatch(fn)
}

// Close stops Run.
func (a *App) Close() {
	a.loop.Close()
}
