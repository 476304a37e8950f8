package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

func echo(_ context.Context, b s3types.Batch) s3types.BatchOutcome {
	return s3types.BatchOutcome{Batch: b, Deleted: b.Len()}
}

func TestPool_SubmitWait(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		batches int
	}{
		{name: "no batches", workers: 4, batches: 0},
		{name: "fewer batches than workers", workers: 16, batches: 3},
		{name: "more batches than workers", workers: 2, batches: 50},
		{name: "default workers", workers: 0, batches: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p := New(ctx, tt.workers, echo)

			for i := 0; i < tt.batches; i++ {
				require.NoError(t, p.Submit(ctx, s3types.Batch{Seq: i, Keys: []string{"k"}}))
			}
			outcomes := p.Wait()

			require.Len(t, outcomes, tt.batches)
			for i, o := range outcomes {
				assert.Equal(t, i, o.Batch.Seq)
			}

			stats := p.Stats()
			assert.Equal(t, int64(tt.batches), stats.Submitted)
			assert.Equal(t, int64(tt.batches), stats.Completed)
			if tt.workers == 0 {
				assert.Equal(t, DefaultWorkers, stats.Workers)
			}
		})
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	var running, peak int32
	task := func(_ context.Context, b s3types.Batch) s3types.BatchOutcome {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return s3types.BatchOutcome{Batch: b}
	}

	ctx := context.Background()
	p := New(ctx, 3, task)
	for i := 0; i < 30; i++ {
		require.NoError(t, p.Submit(ctx, s3types.Batch{Seq: i}))
	}
	p.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestPool_FailedOutcomes(t *testing.T) {
	task := func(_ context.Context, b s3types.Batch) s3types.BatchOutcome {
		if b.Seq%2 == 1 {
			return s3types.BatchOutcome{Batch: b, Err: errors.New("boom")}
		}
		return s3types.BatchOutcome{Batch: b, Deleted: 1}
	}

	ctx := context.Background()
	p := New(ctx, 4, task)
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(ctx, s3types.Batch{Seq: i}))
	}
	outcomes := p.Wait()

	require.Len(t, outcomes, 10)
	assert.Equal(t, int64(5), p.Stats().Failed)
}

func TestPool_SubmitAfterWait(t *testing.T) {
	ctx := context.Background()
	p := New(ctx, 1, echo)
	p.Wait()

	assert.ErrorIs(t, p.Submit(ctx, s3types.Batch{}), ErrClosed)
	// a second Wait is harmless
	assert.Empty(t, p.Wait())
}

func TestPool_SubmitCanceled(t *testing.T) {
	release := make(chan struct{})
	task := func(_ context.Context, b s3types.Batch) s3types.BatchOutcome {
		<-release
		return s3types.BatchOutcome{Batch: b}
	}

	p := New(context.Background(), 1, task)

	// one batch held by the worker, one in the queue
	require.NoError(t, p.Submit(context.Background(), s3types.Batch{Seq: 0}))
	require.NoError(t, p.Submit(context.Background(), s3types.Batch{Seq: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// the queue may or may not have room depending on whether the worker picked up batch 0 yet
	for i := 2; i < 5; i++ {
		if err := p.Submit(ctx, s3types.Batch{Seq: i}); err != nil {
			assert.ErrorIs(t, err, context.Canceled)
			break
		}
	}

	close(release)
	outcomes := p.Wait()
	assert.GreaterOrEqual(t, len(outcomes), 2)
}
