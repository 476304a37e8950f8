package s3purge

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// defaultRegion is used when neither the options nor the environment name one.
const defaultRegion = "us-east-1"

// Client purges S3 buckets. It is safe for concurrent use; every Purge call
// owns its own counter, pool and metrics.
type Client struct {
	// s3Client is the S3 API used for every request
	s3Client s3api.S3API

	// config holds the AWS configuration, empty for injected clients
	config aws.Config

	// logger receives structured logs, nil when logging is disabled
	logger *slog.Logger
}

// New creates a Client from the default AWS credential chain and the given options.
//
// Example:
//
//	client, err := s3purge.New(
//	    s3purge.WithEndpoint("http://localhost:4566"),
//	    s3purge.WithForcePathStyle(true),
//	)
func New(opts ...s3types.Option) (*Client, error) {
	clientCfg := &s3types.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		})
	}

	return &Client{
		s3Client: s3.NewFromConfig(cfg, s3Opts...),
		config:   cfg,
		logger:   clientCfg.Logger,
	}, nil
}

// NewWithClient creates a Client around a custom S3API implementation.
// Only WithLogger has an effect; the other options configure the SDK client.
func NewWithClient(s3Client s3api.S3API, opts ...s3types.Option) *Client {
	clientCfg := &s3types.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		logger:   clientCfg.Logger,
	}
}

// Region returns the AWS region the client sends requests to.
func (c *Client) Region() string {
	return c.config.Region
}
