package options

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/pflag"
)

// PurgeOptions holds the command line configuration of s3purge.
// Credentials and region always come from the ambient AWS configuration.
type PurgeOptions struct {
	// Pipeline tuning.
	Workers        int
	BatchSize      int
	RequestTimeout time.Duration

	// S3-compatible endpoints.
	EndpointURL string
	PathStyle   bool

	// Empty the bucket without deleting it.
	KeepBucket bool

	// Diagnostics. LogLevel empty disables structured logs.
	LogLevel string
	Metrics  bool
}

func NewPurgeOptions() *PurgeOptions {
	return &PurgeOptions{
		Workers:        16,
		BatchSize:      1000,
		RequestTimeout: 5 * time.Minute,
	}
}

func (o *PurgeOptions) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("s3purge", pflag.ContinueOnError)
	flags.IntVar(&o.Workers, "workers", o.Workers, "Number of concurrent DeleteObjects requests.")
	flags.IntVar(&o.BatchSize, "batch-size", o.BatchSize, "Keys per DeleteObjects request, at most 1000.")
	flags.DurationVar(&o.RequestTimeout, "request-timeout", o.RequestTimeout, "Timeout of each storage request. 0 disables it.")
	flags.StringVar(&o.EndpointURL, "endpoint-url", o.EndpointURL, "Custom S3 endpoint URL for S3-compatible services.")
	flags.BoolVar(&o.PathStyle, "path-style", o.PathStyle, "Use path-style addressing.")
	flags.BoolVar(&o.KeepBucket, "keep-bucket", o.KeepBucket, "Delete every object but keep the bucket.")
	flags.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Write structured logs to stderr at this level: debug, info, warn or error.")
	flags.BoolVar(&o.Metrics, "metrics", o.Metrics, "Print run metrics when done.")
	return flags
}

func (o *PurgeOptions) Print(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Debug("options",
		"workers", o.Workers,
		"batch_size", o.BatchSize,
		"request_timeout", o.RequestTimeout,
		"endpoint_url", o.EndpointURL,
		"path_style", o.PathStyle,
		"keep_bucket", o.KeepBucket,
		"metrics", o.Metrics)
}

func (o *PurgeOptions) Validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("--workers must be >= 1, got %d", o.Workers)
	}
	if o.BatchSize < 1 || o.BatchSize > 1000 {
		return fmt.Errorf("--batch-size must be between 1 and 1000, got %d", o.BatchSize)
	}
	if o.RequestTimeout < 0 {
		return fmt.Errorf("--request-timeout must not be negative, got %v", o.RequestTimeout)
	}
	if _, err := o.level(); err != nil {
		return err
	}
	return nil
}

// Logger returns a text logger writing to w, or nil when --log-level is unset.
func (o *PurgeOptions) Logger(w io.Writer) (*slog.Logger, error) {
	if o.LogLevel == "" {
		return nil, nil
	}
	level, err := o.level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func (o *PurgeOptions) level() (slog.Level, error) {
	var level slog.Level
	if o.LogLevel == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return level, fmt.Errorf("--log-level %q: %v", o.LogLevel, err)
	}
	return level, nil
}
