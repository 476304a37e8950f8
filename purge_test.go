package s3purge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/stats"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// recorder is an Observer that keeps every event.
type recorder struct {
	mu      sync.Mutex
	started []string
	totals  []int64
	failed  []s3types.BatchOutcome
}

func (r *recorder) Started(bucket string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, bucket)
}

func (r *recorder) Deleted(total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals = append(r.totals, total)
}

func (r *recorder) BatchFailed(outcome s3types.BatchOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, outcome)
}

func flatten(calls [][]string) []string {
	var keys []string
	for _, c := range calls {
		keys = append(keys, c...)
	}
	return keys
}

func TestClient_Purge_SmallBucket(t *testing.T) {
	fake := testutil.NewFakeBucket("my-bucket", []string{"a", "b", "c"})
	rec := &recorder{}

	report, err := NewWithClient(fake).Purge(context.Background(), "my-bucket", WithObserver(rec))

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, fake.DeleteCalls())
	assert.Equal(t, 1, fake.DeleteBucketCalls())
	assert.True(t, fake.Removed())

	assert.Equal(t, int64(3), report.Listed)
	assert.Equal(t, int64(3), report.Deleted)
	assert.True(t, report.BucketRemoved)
	assert.NoError(t, report.Err())
	assert.Equal(t, []string{"my-bucket"}, rec.started)
	assert.Equal(t, []int64{3}, rec.totals)
}

func TestClient_Purge_EmptyBucket(t *testing.T) {
	fake := testutil.NewFakeBucket("empty", nil)

	report, err := NewWithClient(fake).Purge(context.Background(), "empty")

	require.NoError(t, err)
	assert.Empty(t, fake.DeleteCalls())
	assert.Equal(t, 1, fake.DeleteBucketCalls())
	assert.True(t, report.BucketRemoved)
	assert.Equal(t, 0, report.Batches())
	assert.Equal(t, int64(0), report.Deleted)
}

func TestClient_Purge_Partition(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		batchSize   int
		wantBatches int
	}{
		{name: "one key", count: 1, batchSize: 1000, wantBatches: 1},
		{name: "exact batch", count: 1000, batchSize: 1000, wantBatches: 1},
		{name: "one over", count: 1001, batchSize: 1000, wantBatches: 2},
		{name: "several pages", count: 2500, batchSize: 1000, wantBatches: 3},
		{name: "small batches", count: 10, batchSize: 3, wantBatches: 4},
		{name: "batch size capped", count: 2001, batchSize: 5000, wantBatches: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := testutil.GenerateKeys(tt.count, "")
			fake := testutil.NewFakeBucket("bucket", keys)

			report, err := NewWithClient(fake).Purge(context.Background(), "bucket",
				WithBatchSize(tt.batchSize), WithWorkers(4))
			require.NoError(t, err)

			require.Len(t, report.Outcomes, tt.wantBatches)
			var dispatched []string
			for i, o := range report.Outcomes {
				assert.Equal(t, i, o.Batch.Seq)
				assert.NotZero(t, o.Batch.Len())
				assert.LessOrEqual(t, o.Batch.Len(), min(tt.batchSize, 1000))
				dispatched = append(dispatched, o.Batch.Keys...)
			}
			// every key exactly once, in listing order
			assert.Equal(t, keys, dispatched)
			assert.ElementsMatch(t, keys, flatten(fake.DeleteCalls()))
			assert.Equal(t, int64(tt.count), report.Deleted)
			assert.True(t, fake.Removed())
		})
	}
}

func TestClient_Purge_ConcurrentLatency(t *testing.T) {
	keys := testutil.GenerateKeys(20_000, "logs/")
	fake := testutil.NewFakeBucket("bucket", keys)
	fake.MaxLatency = 3 * time.Millisecond
	rec := &recorder{}

	report, err := NewWithClient(fake).Purge(context.Background(), "bucket",
		WithWorkers(16), WithObserver(rec))
	require.NoError(t, err)

	var sum int
	for _, o := range report.Outcomes {
		sum += o.Deleted
	}
	assert.Equal(t, int64(20_000), report.Deleted)
	assert.Equal(t, int64(sum), report.Deleted)
	assert.Len(t, report.Outcomes, 20)
	assert.True(t, report.BucketRemoved)

	require.Len(t, rec.totals, 20)
	for i := 1; i < len(rec.totals); i++ {
		assert.Greater(t, rec.totals[i], rec.totals[i-1])
	}
	assert.Equal(t, int64(20_000), rec.totals[len(rec.totals)-1])
}

func TestClient_Purge_FailingBatch(t *testing.T) {
	keys := testutil.GenerateKeys(5000, "")
	fake := testutil.NewFakeBucket("bucket", keys)
	fake.MaxLatency = time.Millisecond
	fake.FailDelete = func(call int, _ []string) error {
		if call == 1 {
			return errors.New("internal error")
		}
		return nil
	}
	rec := &recorder{}

	report, err := NewWithClient(fake).Purge(context.Background(), "bucket", WithObserver(rec))
	require.NoError(t, err)

	assert.Len(t, fake.DeleteCalls(), 5)
	require.Len(t, report.FailedBatches(), 1)
	assert.Equal(t, int64(4000), report.Deleted)
	assert.Len(t, rec.failed, 1)

	// the remover still runs and reports the leftover objects
	assert.Equal(t, 1, fake.DeleteBucketCalls())
	assert.False(t, report.BucketRemoved)
	assert.True(t, s3errors.IsBucketNotEmpty(report.BucketErr))
	assert.Equal(t, 1000, fake.Remaining())

	require.Error(t, report.Err())
	assert.Equal(t, 1, report.ErrorCodes()[s3errors.CodeConflict])
	assert.Equal(t, 1, report.ErrorCodes()[s3errors.CodeUnknown])
}

func TestClient_Purge_ImmediateListFailure(t *testing.T) {
	fake := testutil.NewFakeBucket("bucket", testutil.GenerateKeys(10, ""))
	fake.FailList = func(int) error {
		return errors.New("connection refused")
	}

	report, err := NewWithClient(fake).Purge(context.Background(), "bucket")
	require.NoError(t, err)

	assert.Empty(t, fake.DeleteCalls())
	assert.Equal(t, 0, fake.DeleteBucketCalls())
	require.Error(t, report.ListErr)
	assert.Error(t, report.Err())
	assert.False(t, report.BucketRemoved)
	assert.Equal(t, int64(0), report.Listed)
}

func TestClient_Purge_MidListFailure(t *testing.T) {
	keys := testutil.GenerateKeys(3500, "")
	fake := testutil.NewFakeBucket("bucket", keys)
	fake.PageSize = 700
	fake.FailList = func(page int) error {
		if page == 2 {
			return errors.New("throttled")
		}
		return nil
	}

	report, err := NewWithClient(fake).Purge(context.Background(), "bucket")
	require.NoError(t, err)

	// keys from the two good pages are all deleted, the remainder batch included
	assert.Equal(t, int64(1400), report.Listed)
	assert.Equal(t, int64(1400), report.Deleted)
	assert.Equal(t, keys[:1400], flatten(sortedCalls(report)))
	assert.Equal(t, 2100, fake.Remaining())

	assert.Equal(t, 0, fake.DeleteBucketCalls())
	assert.Error(t, report.ListErr)
	assert.False(t, report.BucketRemoved)
}

func sortedCalls(report *s3types.Report) [][]string {
	calls := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		calls = append(calls, o.Batch.Keys)
	}
	return calls
}

func TestClient_Purge_KeyErrors(t *testing.T) {
	fake := testutil.NewFakeBucket("bucket", []string{"a", "locked", "z"})
	fake.RejectKey = func(key string) bool { return key == "locked" }

	report, err := NewWithClient(fake).Purge(context.Background(), "bucket")
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Deleted)
	require.Len(t, report.Outcomes, 1)
	require.Len(t, report.Outcomes[0].KeyErrors, 1)
	assert.Equal(t, "locked", report.Outcomes[0].KeyErrors[0].Key)
	assert.Empty(t, report.FailedBatches())

	assert.True(t, s3errors.IsBucketNotEmpty(report.BucketErr))
	codes := report.ErrorCodes()
	assert.Equal(t, 1, codes[s3errors.CodeForbidden])
	assert.Equal(t, 1, codes[s3errors.CodeConflict])
}

func TestClient_Purge_KeepBucket(t *testing.T) {
	fake := testutil.NewFakeBucket("bucket", testutil.GenerateKeys(1500, ""))

	report, err := NewWithClient(fake).Purge(context.Background(), "bucket", WithKeepBucket(true))
	require.NoError(t, err)

	assert.Equal(t, 0, fake.Remaining())
	assert.Equal(t, 0, fake.DeleteBucketCalls())
	assert.False(t, report.BucketRemoved)
	assert.NoError(t, report.Err())
}

func TestClient_Purge_InvalidBucket(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(
			context.Context,
			*s3.ListObjectsV2Input,
			...func(*s3.Options),
		) (*s3.ListObjectsV2Output, error) {
			t.Error("no request expected")
			return &s3.ListObjectsV2Output{}, nil
		},
	}

	report, err := NewWithClient(mock).Purge(context.Background(), "bad/name")

	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, s3errors.ErrInvalidBucketName)
}

func TestClient_Purge_Canceled(t *testing.T) {
	fake := testutil.NewFakeBucket("bucket", testutil.GenerateKeys(100, ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewWithClient(fake).Purge(ctx, "bucket")
	require.NoError(t, err)

	assert.Empty(t, fake.DeleteCalls())
	assert.Equal(t, 0, fake.DeleteBucketCalls())
	require.Error(t, report.ListErr)
	assert.Equal(t, s3errors.CodeCanceled, s3errors.CodeOf(report.ListErr))
	assert.Equal(t, 100, fake.Remaining())
}

func TestClient_Purge_Metrics(t *testing.T) {
	fake := testutil.NewFakeBucket("bucket", testutil.GenerateKeys(2500, ""))

	report, err := NewWithClient(fake).Purge(context.Background(), "bucket")
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Metrics[stats.Pages])
	assert.Equal(t, int64(2500), report.Metrics[stats.Listed])
	assert.Equal(t, int64(2500), report.Metrics[stats.Deleted])
	// three list pages, three batches, one bucket removal
	assert.Equal(t, int64(7), report.Metrics[stats.Requests])
	assert.Equal(t, int64(0), report.Metrics[stats.FailedBatches])
}

func TestClient_DeleteBucket(t *testing.T) {
	tests := []struct {
		name    string
		fake    *testutil.FakeBucket
		bucket  string
		wantErr error
	}{
		{
			name:   "empty bucket",
			fake:   testutil.NewFakeBucket("bucket", nil),
			bucket: "bucket",
		},
		{
			name:    "not empty",
			fake:    testutil.NewFakeBucket("bucket", []string{"a"}),
			bucket:  "bucket",
			wantErr: s3errors.ErrBucketNotEmpty,
		},
		{
			name:    "missing",
			fake:    testutil.NewFakeBucket("other", nil),
			bucket:  "bucket",
			wantErr: s3errors.ErrBucketNotFound,
		},
		{
			name:    "invalid name",
			fake:    testutil.NewFakeBucket("bucket", nil),
			bucket:  "",
			wantErr: s3errors.ErrInvalidBucketName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewWithClient(tt.fake).DeleteBucket(context.Background(), tt.bucket)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.True(t, tt.fake.Removed())
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
