package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/vango-dev/sprout/internal/errors"
)

// DefaultQueueSize is the capacity of the dispatch channel.
const DefaultQueueSize = 256

// ErrLoopClosed is returned when work is dispatched to a closed loop.
var ErrLoopClosed = errors.New("E111")

// Loop runs tasks and microtasks on one goroutine.
type Loop struct {
	microtasks []func()

	dispatchCh chan func()
	done       chan struct{}
	closed     atomic.Bool

	logger  *slog.Logger
	onPanic func(v any)
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the loop's logger.
func WithLoopLogger(l *slog.Logger) LoopOption {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// WithQueueSize sets the dispatch channel capacity.
func WithQueueSize(n int) LoopOption {
	return func(lp *Loop) {
		if n > 0 {
			lp.dispatchCh = make(chan func(), n)
		}
	}
}

// WithPanicHook registers a callback for panics recovered by Run.
func WithPanicHook(fn func(v any)) LoopOption {
	return func(lp *Loop) { lp.onPanic = fn }
}

// NewLoop creates an idle loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		dispatchCh: make(chan func(), DefaultQueueSize),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post appends a microtask. It must be called from the loop goroutine.
func (l *Loop) Post(fn func()) {
	l.microtasks = append(l.microtasks, fn)
}

// Pending returns the number of queued microtasks.
func (l *Loop) Pending() int {
	return len(l.microtasks)
}

// RunUntilIdle runs microtasks until none remain, including ones posted
// along the way. A panicking microtask propagates to the caller; the
// microtasks behind it stay queued.
func (l *Loop) RunUntilIdle() {
	for len(l.microtasks) > 0 {
		fn := l.microtasks[0]
		l.microtasks[0] = nil
		l.microtasks = l.microtasks[1:]
		fn()
	}
	l.microtasks = nil
}

// Dispatch queues fn to run on the loop goroutine. It is safe to call from
// any goroutine. When the queue is full the task is dropped and logged.
func (l *Loop) Dispatch(fn func()) error {
	if l.closed.Load() {
		return ErrLoopClosed
	}
	select {
	case l.dispatchCh <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	default:
		l.logger.Warn("dispatch queue full, discarding task")
		return fmt.Errorf("scheduler: dispatch queue full")
	}
}

// Call runs fn on the loop, drains the microtasks it caused and waits for
// both to finish. A panic inside fn is returned as an E110 error.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	result := make(chan error, 1)
	err := l.Dispatch(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- errors.New("E110").WithDetail(fmt.Sprint(r))
			}
		}()
		fn()
		l.RunUntilIdle()
		result <- nil
	})
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run serves dispatched tasks until ctx is cancelled or Close is called.
// Each task is followed by a microtask drain. Panics are recovered and
// logged per task and per microtask, and the loop moves on.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.dispatchCh:
			l.runTask(fn)
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		}
	}
}

func (l *Loop) runTask(fn func()) {
	l.safeExecute(fn)
	for len(l.microtasks) > 0 {
		next := l.microtasks[0]
		l.microtasks[0] = nil
		l.microtasks = l.microtasks[1:]
		l.safeExecute(next)
	}
	l.microtasks = nil
}

// safeExecute runs fn with panic recovery.
func (l *Loop) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"error", errors.New("E110"),
				"stack", string(debug.Stack()))
			if l.onPanic != nil {
				l.onPanic(r)
			}
		}
	}()
	fn()
}

// Close stops Run. Later dispatches fail with ErrLoopClosed.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.done)
}

// Closed reports whether Close has been called.
func (l *Loop) Closed() bool {
	return l.closed.Load()
}
