package httpcore

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Backpressure correctness (spec §8 property 5): under a pool saturated to
// capacity, no submitted task is silently dropped — each rejection invokes
// onReject exactly once.
func TestWorkerPoolBackpressureNeverDropsSilently(t *testing.T) {
	wp := NewWorkerPool(1, 2, 1) // max 2 workers, queue depth 1: capacity 3

	release := make(chan struct{})
	var started, rejected atomic.Int64
	var wg sync.WaitGroup

	const attempts = 50
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		wp.Submit(func() {
			started.Add(1)
			<-release
			wg.Done()
		}, func() {
			rejected.Add(1)
			wg.Done()
		})
	}

	// Give in-flight/queued tasks a moment to register as started, then
	// release them so the pool drains.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(attempts), started.Load()+rejected.Load(),
		"every submission must be accounted for as either started or rejected")
}

func TestWorkerPoolShutdownReturnsFalseOnTimeout(t *testing.T) {
	wp := NewWorkerPool(1, 1, 1)
	done := make(chan struct{})
	wp.Submit(func() {
		<-done
	}, func() {})

	ok := wp.Shutdown(10 * time.Millisecond)
	assert.False(t, ok)
	close(done)
}

func TestWorkerPoolShutdownReturnsTrueWhenDrained(t *testing.T) {
	wp := NewWorkerPool(1, 1, 1)
	wp.Submit(func() {}, func() {})

	ok := wp.Shutdown(time.Second)
	assert.True(t, ok)
}
