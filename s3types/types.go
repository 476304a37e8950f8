// Package s3types provides shared type definitions for the purge module.
package s3types

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
)

// MaxBatchSize is the largest number of keys S3 accepts in one DeleteObjects request.
const MaxBatchSize = 1000

// Batch is an ordered group of object keys removed with a single DeleteObjects request.
// A batch is owned by exactly one worker from dispatch until its request returns.
type Batch struct {
	// Seq is the dispatch position of the batch, starting at 0.
	Seq int

	// Keys are the object keys, in listing order.
	Keys []string
}

// Len returns the number of keys in the batch.
func (b Batch) Len() int {
	return len(b.Keys)
}

// KeyError describes a key that S3 reported as not deleted inside an
// otherwise successful DeleteObjects response.
type KeyError struct {
	Key     string
	Code    string
	Message string
}

// BatchOutcome is the result of deleting one batch.
type BatchOutcome struct {
	// Batch is the batch that was submitted.
	Batch Batch

	// Deleted is the number of keys S3 reported as deleted.
	Deleted int

	// KeyErrors lists keys S3 refused to delete. They are not retried.
	KeyErrors []KeyError

	// Err is set when the request itself failed. Deleted is zero in that case.
	Err error

	// Duration is how long the request took.
	Duration time.Duration
}

// Failed reports whether the request for the batch failed.
func (o BatchOutcome) Failed() bool {
	return o.Err != nil
}

// Report summarizes a purge run.
type Report struct {
	// Bucket is the purged bucket.
	Bucket string

	// Listed is the number of keys returned by the listing.
	Listed int64

	// Deleted is the final value of the deletion counter.
	Deleted int64

	// Outcomes holds one entry per dispatched batch, ordered by Batch.Seq.
	Outcomes []BatchOutcome

	// ListErr is the error that stopped the listing, if any.
	ListErr error

	// BucketRemoved is true when the bucket itself was deleted.
	BucketRemoved bool

	// BucketErr is the error returned by the bucket removal, if any.
	BucketErr error

	// Duration is the wall time of the run.
	Duration time.Duration

	// Metrics is a snapshot of the run metrics, keyed by metric name.
	Metrics map[string]int64
}

// Batches returns the number of dispatched batches.
func (r *Report) Batches() int {
	return len(r.Outcomes)
}

// FailedBatches returns the outcomes whose request failed.
func (r *Report) FailedBatches() []BatchOutcome {
	var failed []BatchOutcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins the listing error, every batch error and the bucket error.
// It returns nil for a clean run.
func (r *Report) Err() error {
	var errs []error
	if r.ListErr != nil {
		errs = append(errs, r.ListErr)
	}
	for _, o := range r.FailedBatches() {
		errs = append(errs, fmt.Errorf("batch %d: %w", o.Batch.Seq, o.Err))
	}
	if r.BucketErr != nil {
		errs = append(errs, r.BucketErr)
	}
	return errors.Join(errs...)
}

// ErrorCodes counts failures by classification.
func (r *Report) ErrorCodes() map[s3errors.ErrorCode]int {
	codes := make(map[s3errors.ErrorCode]int)
	if r.ListErr != nil {
		codes[s3errors.CodeOf(r.ListErr)]++
	}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			codes[s3errors.CodeOf(o.Err)]++
		}
		for _, ke := range o.KeyErrors {
			codes[s3errors.CodeFromAWS(ke.Code)]++
		}
	}
	if r.BucketErr != nil {
		codes[s3errors.CodeOf(r.BucketErr)]++
	}
	return codes
}

// Observer receives pipeline events as they happen.
// Implementations must be safe for concurrent use: batch events arrive from workers.
type Observer interface {
	// Started is called once before the first listing request.
	Started(bucket string)

	// Deleted is called with the running total after each successful batch.
	// Calls are serialized by the deletion counter.
	Deleted(total int64)

	// BatchFailed is called when a batch request fails.
	BatchFailed(outcome BatchOutcome)
}

// ClientConfig holds configuration for the purge client.
type ClientConfig struct {
	// Region is the AWS region. Empty means the credential chain decides.
	Region string

	// Endpoint is a custom S3 endpoint URL for S3-compatible services.
	Endpoint string

	// ForcePathStyle selects path-style addressing.
	ForcePathStyle bool

	// MaxRetries overrides the SDK retry attempts when positive.
	MaxRetries int

	// CustomAWSConfig replaces the default configuration loading.
	CustomAWSConfig *aws.Config

	// Logger receives structured logs. Nil disables logging.
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*ClientConfig)

// PurgeConfig holds configuration for a single purge run.
type PurgeConfig struct {
	// Workers is the number of concurrent batch deletions.
	Workers int

	// BatchSize is the number of keys per DeleteObjects request, capped at MaxBatchSize.
	BatchSize int

	// RequestTimeout bounds every storage request. Zero disables the bound.
	RequestTimeout time.Duration

	// KeepBucket empties the bucket without removing it.
	KeepBucket bool

	// Observer receives pipeline events. May be nil.
	Observer Observer
}

// PurgeOption is a functional option for configuring a purge run.
type PurgeOption func(*PurgeConfig)
