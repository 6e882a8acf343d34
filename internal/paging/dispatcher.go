package paging

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/five82/channelsync/internal/metrics"
)

const defaultMaxInFlight = 4

// dispatcher runs background remote calls. Go never blocks the caller; at
// most maxInFlight tasks run at once.
type dispatcher struct {
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	pending atomic.Int64
	metrics *metrics.Metrics
}

func newDispatcher(maxInFlight int, m *metrics.Metrics) *dispatcher {
	if maxInFlight < 1 {
		maxInFlight = defaultMaxInFlight
	}
	return &dispatcher{
		sem:     semaphore.NewWeighted(int64(maxInFlight)),
		metrics: m,
	}
}

// Go schedules fn. When ctx is cancelled before a slot frees up, fn still
// runs so it can observe ctx.Err() and undo its bookkeeping.
func (d *dispatcher) Go(ctx context.Context, fn func(ctx context.Context)) {
	d.wg.Add(1)
	d.pending.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.pending.Add(-1)

		if err := d.sem.Acquire(ctx, 1); err != nil {
			fn(ctx)
			return
		}
		defer d.sem.Release(1)

		d.metrics.TaskStarted()
		defer d.metrics.TaskDone()
		fn(ctx)
	}()
}

// Pending reports scheduled tasks that have not finished.
func (d *dispatcher) Pending() int {
	return int(d.pending.Load())
}

// Wait blocks until every scheduled task has finished, including tasks
// scheduled by running tasks.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}
