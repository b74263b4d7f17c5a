// Package scheduler batches re-render work onto a single goroutine.
//
// A Loop is a single-goroutine executor with a microtask queue. Work posted
// with Post runs after the current task, in order, before the loop takes
// the next dispatched task. Other goroutines hand work to the loop with
// Dispatch or Call.
//
// A Scheduler sits on a Loop and owns an ordered, deduplicated job queue.
// The first QueueJob after a flush posts one flush microtask; the flush
// drains the queue to exhaustion, so jobs queued while it runs join it.
// NextTick posts a callback behind any pending flush:
//
//	loop := scheduler.NewLoop()
//	s := scheduler.New(loop)
//
//	s.QueueJob(job)
//	s.NextTick(func() { fmt.Println("after the flush") })
//	loop.RunUntilIdle()
package scheduler
