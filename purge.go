package s3purge

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/batch"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/operations/delete"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/operations/list"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/stats"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// Purge deletes every object in bucket and then the bucket itself.
//
// The returned error is only set when the run could not start, for example
// because the bucket name is invalid; no request is sent in that case.
// Failures during the run are recorded in the report instead: failed batches
// in Outcomes, a listing failure in ListErr and a removal failure in BucketErr.
//
// The bucket is not removed when the listing failed, when ctx was canceled or
// when WithKeepBucket is set.
func (c *Client) Purge(ctx context.Context, bucket string, opts ...s3types.PurgeOption) (*s3types.Report, error) {
	cfg := defaultPurgeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}

	logger := c.logger
	if logger != nil {
		logger = logger.With("bucket", bucket, "run_id", uuid.NewString())
	}

	start := time.Now()
	report := &s3types.Report{Bucket: bucket}
	observer := cfg.Observer

	st := stats.New()
	defer st.Close()

	counter := progress.NewCounter(func(total int64) {
		if observer != nil {
			observer.Deleted(total)
		}
	})

	deleter := delete.New(c.s3Client, logger, delete.Config{
		RequestTimeout: cfg.RequestTimeout,
		Counter:        counter,
		Stats:          st,
	})

	workers := pool.New(ctx, cfg.Workers, func(ctx context.Context, b s3types.Batch) s3types.BatchOutcome {
		outcome := deleter.Delete(ctx, bucket, b)
		if outcome.Failed() && observer != nil {
			observer.BatchFailed(outcome)
		}
		return outcome
	})

	if observer != nil {
		observer.Started(bucket)
	}
	if logger != nil {
		logger.InfoContext(ctx, "purge started",
			"workers", cfg.Workers,
			"batch_size", cfg.BatchSize)
	}

	report.Listed, report.ListErr = c.produce(ctx, logger, bucket, cfg, workers, st)

	report.Outcomes = workers.Wait()
	report.Deleted = counter.Total()

	switch {
	case report.ListErr != nil:
		if logger != nil {
			logger.WarnContext(ctx, "bucket removal skipped, listing did not complete",
				"error", report.ListErr)
		}
	case ctx.Err() != nil:
		report.BucketErr = errors.NewBucketError("deleteBucket", bucket, errors.ConvertAWSError(ctx.Err()))
	case cfg.KeepBucket:
		if logger != nil {
			logger.DebugContext(ctx, "bucket kept")
		}
	default:
		st.BucketRequest()
		report.BucketErr = c.removeBucket(ctx, bucket, cfg.RequestTimeout)
		report.BucketRemoved = report.BucketErr == nil
		if logger != nil && report.BucketErr != nil {
			logger.ErrorContext(ctx, "bucket removal failed", "error", report.BucketErr)
		}
	}

	report.Duration = time.Since(start)
	report.Metrics = st.Snapshot()

	if logger != nil {
		logger.InfoContext(ctx, "purge finished",
			"listed", report.Listed,
			"deleted", report.Deleted,
			"batches", report.Batches(),
			"failed_batches", len(report.FailedBatches()),
			"bucket_removed", report.BucketRemoved,
			"duration", report.Duration)
	}

	return report, nil
}

// produce streams the listing through the batcher into the pool. It returns
// the number of keys listed and the error that stopped the listing, if any.
// Keys already listed when the listing fails are still queued.
func (c *Client) produce(
	ctx context.Context,
	logger *slog.Logger,
	bucket string,
	cfg *s3types.PurgeConfig,
	workers *pool.Pool,
	st *stats.Stats,
) (int64, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := list.New(c.s3Client, logger).Keys(listCtx, &list.Config{
		Bucket:         bucket,
		RequestTimeout: cfg.RequestTimeout,
		OnPage:         st.PageListed,
	})

	var (
		listed  int64
		listErr error
	)
	batcher := batch.New(cfg.BatchSize)

	for result := range keys {
		if result.Err != nil {
			listErr = result.Err
			break
		}
		listed++

		if b, ok := batcher.Add(result.Key); ok {
			if err := workers.Submit(ctx, b); err != nil {
				break
			}
		}
	}

	if listErr == nil && ctx.Err() != nil {
		listErr = errors.NewBucketError("list", bucket, errors.ConvertAWSError(ctx.Err()))
	}
	if ctx.Err() != nil {
		return listed, listErr
	}

	if b, ok := batcher.Flush(); ok {
		if err := workers.Submit(ctx, b); err != nil && listErr == nil {
			listErr = errors.NewBucketError("list", bucket, errors.ConvertAWSError(err))
		}
	}

	return listed, listErr
}

// DeleteBucket deletes an empty bucket.
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}
	return c.removeBucket(ctx, bucket, 0)
}

func (c *Client) removeBucket(ctx context.Context, bucket string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	input := &s3.DeleteBucketInput{
		Bucket: aws.String(bucket),
	}

	if _, err := c.s3Client.DeleteBucket(ctx, input); err != nil {
		return errors.NewBucketError("deleteBucket", bucket, errors.ConvertAWSError(err))
	}

	return nil
}
