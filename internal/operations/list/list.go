package list

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
)

// maxPageSize is the largest page ListObjectsV2 returns.
const maxPageSize = 1000

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Lister handles listing of S3 object keys.
type Lister struct {
	client S3Interface
	logger *slog.Logger
}

// New creates a new Lister. A nil logger disables logging.
func New(client S3Interface, logger *slog.Logger) *Lister {
	return &Lister{
		client: client,
		logger: logger,
	}
}

// Config holds configuration for list operations.
type Config struct {
	Bucket   string
	PageSize int32

	// RequestTimeout bounds each ListObjectsV2 call. Zero disables the bound.
	RequestTimeout time.Duration

	// OnPage, if set, is called after each page with the number of keys it held.
	OnPage func(keys int)
}

// Page is one page of listed keys.
type Page struct {
	Keys              []string
	IsTruncated       bool
	ContinuationToken string
}

// KeyResult wraps a key or the error that ended the listing.
type KeyResult struct {
	Key string
	Err error
}

// Paginate creates a paginator over the whole bucket.
func (l *Lister) Paginate(config *Config) *Paginator {
	return &Paginator{
		client:    l.client,
		config:    config,
		pageSize:  optimalPageSize(config),
		firstPage: true,
	}
}

// Keys streams every key in the bucket. Pages are fetched lazily as the
// channel is drained. A listing failure is delivered as the final KeyResult
// with Err set; the channel is closed afterwards in every case.
func (l *Lister) Keys(ctx context.Context, config *Config) <-chan KeyResult {
	resultChan := make(chan KeyResult, maxPageSize)

	go func() {
		defer close(resultChan)

		paginator := l.Paginate(config)

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				if l.logger != nil {
					l.logger.ErrorContext(ctx, "listing failed",
						"page", paginator.Pages()+1,
						"error", err)
				}
				select {
				case resultChan <- KeyResult{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			if l.logger != nil {
				l.logger.DebugContext(ctx, "listed page",
					"page", paginator.Pages(),
					"keys", len(page.Keys),
					"truncated", page.IsTruncated)
			}
			if config.OnPage != nil {
				config.OnPage(len(page.Keys))
			}

			for _, key := range page.Keys {
				select {
				case resultChan <- KeyResult{Key: key}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return resultChan
}

// Paginator walks a listing page by page using continuation tokens.
type Paginator struct {
	client            S3Interface
	config            *Config
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
	pages             int
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// Pages returns the number of pages fetched so far.
func (p *Paginator) Pages() int {
	return p.pages
}

// NextPage fetches the next page of results.
func (p *Paginator) NextPage(ctx context.Context) (*Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.config.Bucket),
		MaxKeys: aws.Int32(p.pageSize),
	}

	if !p.firstPage && p.continuationToken != nil {
		input.ContinuationToken = p.continuationToken
	}

	reqCtx := ctx
	if p.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, p.config.RequestTimeout)
		defer cancel()
	}

	output, err := p.client.ListObjectsV2(reqCtx, input)
	if err != nil {
		return nil, s3errors.NewBucketError("list", p.config.Bucket, s3errors.ConvertAWSError(err))
	}

	p.firstPage = false
	p.pages++
	p.hasMorePages = aws.ToBool(output.IsTruncated)
	p.continuationToken = output.NextContinuationToken

	// a truncated page without a token would loop forever on the first page
	if p.hasMorePages && aws.ToString(p.continuationToken) == "" {
		p.hasMorePages = false
		return nil, s3errors.NewBucketError("list", p.config.Bucket, s3errors.ErrInvalidInput).
			WithMessage("truncated listing without continuation token")
	}

	return convertOutput(output), nil
}

// convertOutput converts S3 output to our Page type.
func convertOutput(output *s3.ListObjectsV2Output) *Page {
	page := &Page{
		Keys:        make([]string, 0, len(output.Contents)),
		IsTruncated: aws.ToBool(output.IsTruncated),
	}

	if output.NextContinuationToken != nil {
		page.ContinuationToken = *output.NextContinuationToken
	}

	for _, obj := range output.Contents {
		page.Keys = append(page.Keys, aws.ToString(obj.Key))
	}

	return page
}

// optimalPageSize determines the page size for pagination.
func optimalPageSize(config *Config) int32 {
	if config.PageSize > 0 && config.PageSize <= maxPageSize {
		return config.PageSize
	}
	// Default to maximum for efficiency
	return maxPageSize
}
