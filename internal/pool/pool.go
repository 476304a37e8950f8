// Package pool runs batch deletions on a fixed set of workers.
package pool

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// DefaultWorkers is the worker count used when none is given.
const DefaultWorkers = 16

// ErrClosed is returned by Submit once Wait has been called.
var ErrClosed = errors.New("pool: closed")

// Task processes one batch. It must not panic and should honour ctx.
type Task func(ctx context.Context, batch s3types.Batch) s3types.BatchOutcome

// Pool is a bounded worker pool fed through a queue channel.
// Batches leave the queue in submission order; they complete in any order.
type Pool struct {
	queue chan s3types.Batch
	task  Task
	wg    sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	outcomes []s3types.BatchOutcome
	stats    Stats
}

// Stats tracks pool usage.
type Stats struct {
	Workers   int
	Submitted int64
	Completed int64
	Failed    int64
}

// New starts workers goroutines running task. The queue holds one batch per
// worker, so Submit blocks once every worker is busy and the queue is full.
func New(ctx context.Context, workers int, task Task) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	p := &Pool{
		queue: make(chan s3types.Batch, workers),
		task:  task,
		stats: Stats{Workers: workers},
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work(ctx)
	}

	return p
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()

	for batch := range p.queue {
		outcome := p.task(ctx, batch)

		p.mu.Lock()
		p.outcomes = append(p.outcomes, outcome)
		p.stats.Completed++
		if outcome.Failed() {
			p.stats.Failed++
		}
		p.mu.Unlock()
	}
}

// Submit queues a batch. It blocks while the queue is full and returns the
// context error if ctx ends first.
func (p *Pool) Submit(ctx context.Context, batch s3types.Batch) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.mu.Unlock()

	select {
	case p.queue <- batch:
		p.mu.Lock()
		p.stats.Submitted++
		p.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait closes the queue, waits for every queued batch to finish and returns
// the outcomes ordered by batch sequence. Submit must not run concurrently
// with Wait.
func (p *Pool) Wait() []s3types.BatchOutcome {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	outcomes := make([]s3types.BatchOutcome, len(p.outcomes))
	copy(outcomes, p.outcomes)
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Batch.Seq < outcomes[j].Batch.Seq
	})
	return outcomes
}

// Stats returns a copy of the current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
