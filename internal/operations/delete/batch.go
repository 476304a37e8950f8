package delete

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/stats"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	DeleteObjects(
		ctx context.Context,
		input *s3.DeleteObjectsInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

// Config holds the collaborators of a BatchDeleter.
type Config struct {
	// RequestTimeout bounds each DeleteObjects call. Zero disables the bound.
	RequestTimeout time.Duration

	// Counter receives the deleted count of every successful batch. Required.
	Counter *progress.Counter

	// Stats records request metrics. May be nil.
	Stats *stats.Stats
}

// BatchDeleter deletes one batch per DeleteObjects request.
type BatchDeleter struct {
	client S3Interface
	config Config
	logger *slog.Logger
}

// New creates a new BatchDeleter. A nil logger disables logging.
func New(client S3Interface, logger *slog.Logger, config Config) *BatchDeleter {
	if config.Counter == nil {
		config.Counter = progress.NewCounter(nil)
	}
	return &BatchDeleter{
		client: client,
		config: config,
		logger: logger,
	}
}

// Delete removes the keys of batch from bucket with a single request and
// returns what happened. It never returns a partially counted failure: either
// the request succeeded and its deleted count was added to the counter, or it
// failed and Deleted is zero.
func (b *BatchDeleter) Delete(ctx context.Context, bucket string, batch s3types.Batch) s3types.BatchOutcome {
	outcome := s3types.BatchOutcome{Batch: batch}

	if batch.Len() == 0 {
		return outcome
	}
	if batch.Len() > s3types.MaxBatchSize {
		outcome.Err = s3errors.NewBucketError("deleteObjects", bucket, s3errors.ErrInvalidInput).
			WithMessage("batch exceeds 1000 keys")
		return outcome
	}

	start := time.Now()
	output, err := b.deleteObjects(ctx, bucket, batch.Keys)
	outcome.Duration = time.Since(start)

	if err != nil {
		outcome.Err = s3errors.NewBucketError("deleteObjects", bucket, s3errors.ConvertAWSError(err))
		b.record(outcome)
		if b.logger != nil {
			b.logger.ErrorContext(ctx, "batch delete failed",
				"batch", batch.Seq,
				"keys", batch.Len(),
				"error", outcome.Err)
		}
		return outcome
	}

	outcome.Deleted = len(output.Deleted)
	outcome.KeyErrors = convertErrors(output.Errors)
	b.record(outcome)
	total := b.config.Counter.Add(outcome.Deleted)

	if b.logger != nil {
		b.logger.DebugContext(ctx, "batch deleted",
			"batch", batch.Seq,
			"deleted", outcome.Deleted,
			"total", total,
			"duration", outcome.Duration)
		if n := len(outcome.KeyErrors); n > 0 {
			first := outcome.KeyErrors[0]
			b.logger.WarnContext(ctx, "keys not deleted",
				"batch", batch.Seq,
				"key_errors", n,
				"key", first.Key,
				"code", first.Code,
				"message", first.Message)
		}
	}

	return outcome
}

func (b *BatchDeleter) deleteObjects(ctx context.Context, bucket string, keys []string) (*s3.DeleteObjectsOutput, error) {
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{
			Key: aws.String(key),
		})
	}

	input := &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false), // per-key results are needed for the count
		},
	}

	if b.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.RequestTimeout)
		defer cancel()
	}

	return b.client.DeleteObjects(ctx, input)
}

func (b *BatchDeleter) record(outcome s3types.BatchOutcome) {
	if b.config.Stats == nil {
		return
	}
	b.config.Stats.BatchDone(outcome.Deleted, len(outcome.KeyErrors), outcome.Failed(), outcome.Duration)
}

// convertErrors converts the per-key errors of a DeleteObjects response.
func convertErrors(errs []types.Error) []s3types.KeyError {
	if len(errs) == 0 {
		return nil
	}
	result := make([]s3types.KeyError, 0, len(errs))
	for _, e := range errs {
		result = append(result, s3types.KeyError{
			Key:     aws.ToString(e.Key),
			Code:    aws.ToString(e.Code),
			Message: aws.ToString(e.Message),
		})
	}
	return result
}
