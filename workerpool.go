package httpcore

import (
	"time"

	"github.com/alitto/pond/v2"
)

// WorkerPool is a bounded task queue with synchronous-rejection
// backpressure (spec §4.2, C2), backed by github.com/alitto/pond/v2 —
// grounded on the teacher's core/engine/rawhttp RequestWorkerPool, which
// wraps the same library for its own bounded concurrent-request dispatch.
//
// core is advisory: pond scales goroutines 0..max on demand rather than
// keeping a fixed warm set, so core only informs callers of the intended
// steady-state width; it does not change pond's behavior.
type WorkerPool struct {
	pool pond.Pool
	core int
	max  int
}

// NewWorkerPool builds a pool bounded to max concurrent workers with a
// queue capacity of queueCapacity beyond that.
func NewWorkerPool(core, max, queueCapacity int) *WorkerPool {
	if max <= 0 {
		max = 1
	}
	return &WorkerPool{
		pool: pond.NewPool(max, pond.WithQueueSize(queueCapacity)),
		core: core,
		max:  max,
	}
}

// Submit enqueues task if the queue accepts it; otherwise onReject runs
// synchronously on the caller's goroutine and task never runs (spec §4.2).
func (wp *WorkerPool) Submit(task func(), onReject func()) {
	if _, ok := wp.pool.TrySubmit(task); !ok {
		onReject()
	}
}

// RunningWorkers, SubmittedTasks, WaitingTasks, and CompletedTasks surface
// pond's own counters for callers building metrics on top of WorkerPool.
func (wp *WorkerPool) RunningWorkers() int64  { return wp.pool.RunningWorkers() }
func (wp *WorkerPool) SubmittedTasks() uint64 { return wp.pool.SubmittedTasks() }
func (wp *WorkerPool) WaitingTasks() uint64   { return wp.pool.WaitingTasks() }
func (wp *WorkerPool) CompletedTasks() uint64 { return wp.pool.CompletedTasks() }

// Shutdown stops accepting new submissions, waits up to graceMillis for
// in-flight tasks to finish, then returns whether the drain completed in
// time. Tasks still queued or running past the deadline are abandoned —
// their connections are closed by the caller (spec §4.2, §5 cancellation).
func (wp *WorkerPool) Shutdown(graceMillis time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wp.pool.StopAndWait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(graceMillis):
		return false
	}
}
