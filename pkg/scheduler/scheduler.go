package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

var jobIDCounter uint64

// Job is a unit of queued work. Jobs are compared by pointer, so the same
// *Job queued twice before a flush runs once.
type Job struct {
	id   uint64
	name string
	fn   func()
}

// NewJob creates a job. The name labels logs and metrics.
func NewJob(name string, fn func()) *Job {
	return &Job{
		id:   atomic.AddUint64(&jobIDCounter, 1),
		name: name,
		fn:   fn,
	}
}

// ID returns the job's unique identifier.
func (j *Job) ID() uint64 { return j.id }

// Name returns the job's label.
func (j *Job) Name() string { return j.name }

// Run executes the job body.
func (j *Job) Run() { j.fn() }

// Hooks observe scheduler activity. Any field may be nil.
type Hooks struct {
	// OnQueue is called for every QueueJob; deduped is true when the job
	// was already queued.
	OnQueue func(job *Job, deduped bool)

	// OnFlush is called after a flush drains the queue.
	OnFlush func(ran int, elapsed time.Duration)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks installs observation hooks.
func WithHooks(h Hooks) Option {
	return func(s *Scheduler) { s.hooks = h }
}

// Scheduler is an ordered, deduplicated job queue flushed as a microtask on
// its Loop. Not safe for concurrent use; call it from the loop goroutine.
type Scheduler struct {
	loop *Loop

	queue  []*Job
	queued map[*Job]struct{}

	flushPending bool
	flushing     bool

	hooks  Hooks
	logger *slog.Logger
}

// New creates a scheduler on loop.
func New(loop *Loop, opts ...Option) *Scheduler {
	s := &Scheduler{
		loop:   loop,
		queued: make(map[*Job]struct{}),
		logger: slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loop returns the loop the scheduler flushes on.
func (s *Scheduler) Loop() *Loop {
	return s.loop
}

// QueueJob appends job unless it is already queued. The first job since the
// last flush posts a flush microtask.
func (s *Scheduler) QueueJob(job *Job) {
	_, deduped := s.queued[job]
	if s.hooks.OnQueue != nil {
		s.hooks.OnQueue(job, deduped)
	}
	if deduped {
		return
	}
	s.queued[job] = struct{}{}
	s.queue = append(s.queue, job)
	s.queueFlush()
}

func (s *Scheduler) queueFlush() {
	if s.flushPending || s.flushing {
		return
	}
	s.flushPending = true
	s.loop.Post(s.Flush)
}

// Invalidate removes job from the queue if it has not run yet.
func (s *Scheduler) Invalidate(job *Job) {
	if _, ok := s.queued[job]; !ok {
		return
	}
	delete(s.queued, job)
	for i, j := range s.queue {
		if j == job {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// Has reports whether job is waiting in the queue.
func (s *Scheduler) Has(job *Job) bool {
	_, ok := s.queued[job]
	return ok
}

// Len returns the number of queued jobs.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Flush runs queued jobs in order until the queue is empty. Jobs queued by
// a running job are appended and run in the same flush. If a job panics the
// queue is cleared before the panic continues.
func (s *Scheduler) Flush() {
	s.flushPending = false
	if s.flushing || len(s.queue) == 0 {
		return
	}
	s.flushing = true
	start := time.Now()
	ran := 0

	defer func() {
		s.flushing = false
		if r := recover(); r != nil {
			s.queue = nil
			s.queued = make(map[*Job]struct{})
			panic(r)
		}
	}()

	for len(s.queue) > 0 {
		job := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		delete(s.queued, job)
		job.Run()
		ran++
	}
	s.queue = nil

	elapsed := time.Since(start)
	s.logger.Debug("flush", "jobs", ran, "elapsed", elapsed)
	if s.hooks.OnFlush != nil {
		s.hooks.OnFlush(ran, elapsed)
	}
}

// Tick resolves after the flush that was pending when it was created, or
// after the current turn when nothing was pending.
type Tick struct {
	done chan struct{}
}

// Done is closed once the tick's callback has run.
func (t *Tick) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the tick resolves or ctx ends.
func (t *Tick) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextTick posts cb behind any pending flush. cb may be nil.
func (s *Scheduler) NextTick(cb func()) *Tick {
	t := &Tick{done: make(chan struct{})}
	s.loop.Post(func() {
		defer close(t.done)
		if cb != nil {
			cb()
		}
	})
	return t
}
