package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/cmd/s3purge/app/options"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// Purger is the part of s3purge.Client the command needs.
type Purger interface {
	Purge(ctx context.Context, bucket string, opts ...s3types.PurgeOption) (*s3types.Report, error)
}

// ClientFactory builds a Purger from the parsed options.
type ClientFactory func(o *options.PurgeOptions, logger *slog.Logger) (Purger, error)

// NewClient builds an s3purge.Client from the ambient AWS configuration.
func NewClient(o *options.PurgeOptions, logger *slog.Logger) (Purger, error) {
	opts := []s3types.Option{s3purge.WithLogger(logger)}
	if o.EndpointURL != "" {
		opts = append(opts, s3purge.WithEndpoint(o.EndpointURL))
	}
	if o.PathStyle {
		opts = append(opts, s3purge.WithForcePathStyle(true))
	}
	client, err := s3purge.New(opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// usageError marks failures that print the usage line and exit 1.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// PurgeCommand runs s3purge against one bucket.
type PurgeCommand struct {
	Program   string
	Stdout    io.Writer
	Stderr    io.Writer
	NewClient ClientFactory

	helped bool
}

// NewPurgeCommand creates the cobra command. Help and usage output are
// replaced by the single usage line printed by Execute.
func NewPurgeCommand(p *PurgeCommand, o *options.PurgeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           p.Program + " <bucket-name>",
		Short:         "Delete every object in an S3 bucket, then the bucket itself.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError{fmt.Errorf("expected 1 argument, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return p.Run(cmd.Context(), o, args[0])
		},
	}

	cmd.Flags().AddFlagSet(o.Flags())
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		p.helped = true
	})
	cmd.SetUsageFunc(func(*cobra.Command) error { return nil })
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	cmd.SetOut(p.Stdout)
	cmd.SetErr(p.Stderr)

	return cmd
}

// Execute runs the command with args and returns the process exit code:
// 1 for usage errors and help, 0 otherwise, including failed deletions.
func (p *PurgeCommand) Execute(ctx context.Context, args []string) int {
	if args == nil {
		// cobra falls back to os.Args on a nil slice
		args = []string{}
	}

	cmd := NewPurgeCommand(p, options.NewPurgeOptions())
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	var usage usageError
	switch {
	case p.helped:
	case errors.As(err, &usage):
		fmt.Fprintf(p.Stderr, "Error: %v\n", usage.err)
	case err != nil:
		fmt.Fprintf(p.Stdout, "\nError: %v\n", err)
		return 0
	default:
		return 0
	}

	fmt.Fprintf(p.Stdout, "Usage: %s <bucket-name>\n", p.Program)
	return 1
}

// Run purges bucket. Storage failures are printed, not returned.
func (p *PurgeCommand) Run(ctx context.Context, o *options.PurgeOptions, bucket string) error {
	if err := o.Validate(); err != nil {
		return usageError{err}
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		return usageError{err}
	}

	logger, err := o.Logger(p.Stderr)
	if err != nil {
		return usageError{err}
	}
	o.Print(logger)

	client, err := p.NewClient(o, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx, cancel := SetupSignalContext(ctx)
	defer cancel()

	out := newConsole(p.Stdout)
	report, err := client.Purge(ctx, bucket,
		s3purge.WithWorkers(o.Workers),
		s3purge.WithBatchSize(o.BatchSize),
		s3purge.WithRequestTimeout(o.RequestTimeout),
		s3purge.WithKeepBucket(o.KeepBucket),
		s3purge.WithObserver(out),
	)
	if err != nil {
		return err
	}

	out.Finish(report, o.KeepBucket, o.Metrics)
	return nil
}
