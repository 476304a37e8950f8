package s3purge

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// Purge defaults.
const (
	DefaultWorkers        = 16
	DefaultBatchSize      = s3types.MaxBatchSize
	DefaultRequestTimeout = 5 * time.Minute
)

// WithRegion sets the AWS region.
// If not specified, the region comes from the credential chain, then us-east-1.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the SDK's maximum attempts per request.
// Zero keeps the SDK default.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithAWSConfig provides a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithWorkers sets the number of concurrent batch deletions. Default is 16.
func WithWorkers(workers int) s3types.PurgeOption {
	return func(c *s3types.PurgeConfig) {
		if workers > 0 {
			c.Workers = workers
		}
	}
}

// WithBatchSize sets the number of keys per DeleteObjects request.
// Values above 1000 are capped at 1000.
func WithBatchSize(size int) s3types.PurgeOption {
	return func(c *s3types.PurgeConfig) {
		if size > 0 {
			c.BatchSize = min(size, s3types.MaxBatchSize)
		}
	}
}

// WithRequestTimeout bounds every storage request. Zero disables the bound.
func WithRequestTimeout(timeout time.Duration) s3types.PurgeOption {
	return func(c *s3types.PurgeConfig) {
		if timeout >= 0 {
			c.RequestTimeout = timeout
		}
	}
}

// WithObserver registers an observer for pipeline events.
func WithObserver(observer s3types.Observer) s3types.PurgeOption {
	return func(c *s3types.PurgeConfig) {
		c.Observer = observer
	}
}

// WithKeepBucket empties the bucket but does not delete it.
func WithKeepBucket(keep bool) s3types.PurgeOption {
	return func(c *s3types.PurgeConfig) {
		c.KeepBucket = keep
	}
}

func defaultPurgeConfig() *s3types.PurgeConfig {
	return &s3types.PurgeConfig{
		Workers:        DefaultWorkers,
		BatchSize:      DefaultBatchSize,
		RequestTimeout: DefaultRequestTimeout,
	}
}
