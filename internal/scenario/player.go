package scenario

import (
	"log/slog"

	"github.com/vango-dev/sprout/pkg/host/memhost"
	"github.com/vango-dev/sprout/pkg/reactive"
	"github.com/vango-dev/sprout/pkg/scheduler"
	"github.com/vango-dev/sprout/pkg/vdom"
)

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger handed to the runtime, scheduler and renderer.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithHost renders into h instead of a fresh host.
func WithHost(h *memhost.Host) Option {
	return func(p *Player) { p.host = h }
}

// WithLoop flushes on loop instead of a private one.
func WithLoop(l *scheduler.Loop) Option {
	return func(p *Player) { p.loop = l }
}

// WithSchedulerHooks observes the player's scheduler.
func WithSchedulerHooks(h scheduler.Hooks) Option {
	return func(p *Player) { p.schedHooks = h }
}

// WithRendererHooks observes the player's renderer.
func WithRendererHooks(h vdom.Hooks) Option {
	return func(p *Player) { p.renderHooks = h }
}

// Player drives one scenario. It is not safe for concurrent use; callers
// sharing a player across goroutines go through its Loop.
type Player struct {
	sc *Scenario

	host *memhost.Host
	root *memhost.Node
	loop *scheduler.Loop

	rt       *reactive.Runtime
	renderer *vdom.Renderer
	app      *vdom.App

	state  *reactive.Proxy
	labels *reactive.Proxy

	schedHooks  scheduler.Hooks
	renderHooks vdom.Hooks
	logger      *slog.Logger

	order   []string
	next    int
	mounted bool
	trace   Trace
}

// NewPlayer prepares sc for replay. Nothing is rendered until Mount.
func NewPlayer(sc *Scenario, opts ...Option) *Player {
	p := &Player{
		sc:     sc,
		logger: slog.Default().With("component", "scenario"),
		order:  append([]string{}, sc.Initial...),
		trace:  Trace{Scenario: sc.Name},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.host == nil {
		p.host = memhost.New()
	}
	if p.loop == nil {
		p.loop = scheduler.NewLoop(scheduler.WithLoopLogger(p.logger))
	}
	p.root = p.host.CreateRoot()

	p.rt = reactive.NewRuntime(reactive.WithLogger(p.logger))
	sched := scheduler.New(p.loop,
		scheduler.WithLogger(p.logger),
		scheduler.WithHooks(p.schedHooks))
	p.renderer = vdom.NewRenderer(p.host,
		vdom.WithRuntime(p.rt),
		vdom.WithScheduler(sched),
		vdom.WithLogger(p.logger),
		vdom.WithHooks(p.renderHooks))

	labels := make(map[string]any, len(sc.Labels))
	for k, v := range sc.Labels {
		labels[k] = v
	}
	p.state = p.rt.Reactive(map[string]any{
		"order":  p.order,
		"labels": labels,
	}).(*reactive.Proxy)
	p.labels = p.state.Get("labels").(*reactive.Proxy)
	p.app = p.renderer.CreateApp(listComponent(sc.Container, sc.Item), vdom.Props{"state": p.state})
	return p
}

// Scenario returns the scenario being played.
func (p *Player) Scenario() *Scenario { return p.sc }

// Host returns the host the list renders into.
func (p *Player) Host() *memhost.Host { return p.host }

// Root returns the container node.
func (p *Player) Root() *memhost.Node { return p.root }

// Loop returns the loop flushes run on.
func (p *Player) Loop() *scheduler.Loop { return p.loop }

// Order returns the current key order.
func (p *Player) Order() []string { return append([]string{}, p.order...) }

// Position returns how many steps have been applied.
func (p *Player) Position() int { return p.next }

// Done reports whether every step has been applied.
func (p *Player) Done() bool { return p.mounted && p.next >= len(p.sc.Steps) }

// Trace returns the steps recorded so far.
func (p *Player) Trace() *Trace {
	t := Trace{Scenario: p.trace.Scenario, Steps: append([]StepTrace{}, p.trace.Steps...)}
	return &t
}

// Mount renders the initial list. Calling it again returns the recorded
// mount step.
func (p *Player) Mount() StepTrace {
	if p.mounted {
		return p.trace.Steps[0]
	}
	mark := len(p.host.Ops())
	p.app.Mount(p.root)
	p.loop.RunUntilIdle()
	p.mounted = true
	return p.record(MountStep, mark, nil)
}

// Step applies the next step and flushes. It reports false once the
// scenario is exhausted. The first call mounts if needed.
func (p *Player) Step() (StepTrace, bool) {
	if !p.mounted {
		p.Mount()
	}
	if p.next >= len(p.sc.Steps) {
		return StepTrace{}, false
	}
	step := p.sc.Steps[p.next]
	p.next++

	mark := len(p.host.Ops())
	p.apply(step)
	p.loop.RunUntilIdle()
	p.logger.Debug("scenario step", "scenario", p.sc.Name, "step", step.Name)
	return p.record(step.Name, mark, step.Expect), true
}

// Run mounts and applies every remaining step.
func (p *Player) Run() *Trace {
	p.Mount()
	for {
		if _, ok := p.Step(); !ok {
			break
		}
	}
	return p.Trace()
}

// Unmount tears the list down.
func (p *Player) Unmount() {
	p.app.Unmount()
	p.loop.RunUntilIdle()
}

func (p *Player) apply(step Step) {
	for k, v := range step.Rename {
		p.labels.Set(k, v)
	}
	if len(step.Rename) > 0 {
		return
	}
	next, err := step.apply(p.order)
	if err != nil {
		p.logger.Warn("scenario step skipped", "step", step.Name, "error", err)
		return
	}
	p.order = next
	p.state.Set("order", next)
}

func (p *Player) record(name string, mark int, expect *Expect) StepTrace {
	ops := p.host.Ops()[mark:]
	st := newStepTrace(name, ops, p.host.Serialize(p.root))
	st.check(expect)
	p.trace.Steps = append(p.trace.Steps, st)
	return st
}

// Play replays sc to the end on a fresh player.
func Play(sc *Scenario, opts ...Option) *Trace {
	return NewPlayer(sc, opts...).Run()
}
