package testutil

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/s3api"
)

// FakeBucket is an in-memory bucket implementing S3API.
// It is safe for concurrent use and records every call it receives.
type FakeBucket struct {
	// Name is the bucket name requests must target.
	Name string

	// PageSize caps ListObjectsV2 pages. Zero means 1000.
	PageSize int

	// MaxLatency adds a random delay in [0, MaxLatency) to each DeleteObjects call.
	MaxLatency time.Duration

	// FailDelete, if set, makes a DeleteObjects call fail when it returns an error.
	// call is the zero-based index of the call in arrival order.
	FailDelete func(call int, keys []string) error

	// RejectKey, if set, reports the key as a per-key AccessDenied error.
	RejectKey func(key string) bool

	// FailList, if set, makes the ListObjectsV2 call for the zero-based page fail.
	FailList func(page int) error

	// FailDeleteBucket, if set, is returned by DeleteBucket.
	FailDeleteBucket error

	mu            sync.Mutex
	rand          *rand.Rand
	objects       map[string]struct{}
	removed       bool
	listCalls     int
	deleteCalls   [][]string
	deleteBuckets int
}

// NewFakeBucket creates a bucket holding the given keys.
func NewFakeBucket(name string, keys []string) *FakeBucket {
	objects := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		objects[k] = struct{}{}
	}
	return &FakeBucket{
		Name:    name,
		rand:    rand.New(rand.NewSource(1)),
		objects: objects,
	}
}

// ListObjectsV2 returns keys in lexical order; the continuation token is the last key returned.
func (f *FakeBucket) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page := f.listCalls
	f.listCalls++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.FailList != nil {
		if err := f.FailList(page); err != nil {
			return nil, err
		}
	}
	if f.removed || aws.ToString(params.Bucket) != f.Name {
		return nil, &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist")}
	}

	limit := f.PageSize
	if limit <= 0 {
		limit = 1000
	}
	if params.MaxKeys != nil && int(*params.MaxKeys) < limit {
		limit = int(*params.MaxKeys)
	}

	after := aws.ToString(params.ContinuationToken)
	remaining := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if k > after {
			remaining = append(remaining, k)
		}
	}
	sort.Strings(remaining)

	truncated := len(remaining) > limit
	if truncated {
		remaining = remaining[:limit]
	}

	output := &s3.ListObjectsV2Output{
		Name:        aws.String(f.Name),
		IsTruncated: aws.Bool(truncated),
		KeyCount:    aws.Int32(int32(len(remaining))),
	}
	for _, k := range remaining {
		output.Contents = append(output.Contents, types.Object{Key: aws.String(k)})
	}
	if truncated {
		output.NextContinuationToken = aws.String(remaining[len(remaining)-1])
	}
	return output, nil
}

// DeleteObjects removes the named keys. Absent keys are reported as deleted, as S3 does.
func (f *FakeBucket) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	keys := make([]string, 0, len(params.Delete.Objects))
	for _, obj := range params.Delete.Objects {
		keys = append(keys, aws.ToString(obj.Key))
	}

	f.mu.Lock()
	call := len(f.deleteCalls)
	f.deleteCalls = append(f.deleteCalls, keys)
	var delay time.Duration
	if f.MaxLatency > 0 {
		delay = time.Duration(f.rand.Int63n(int64(f.MaxLatency)))
	}
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.FailDelete != nil {
		if err := f.FailDelete(call, keys); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	output := &s3.DeleteObjectsOutput{}
	for _, k := range keys {
		if f.RejectKey != nil && f.RejectKey(k) {
			output.Errors = append(output.Errors, types.Error{
				Key:     aws.String(k),
				Code:    aws.String("AccessDenied"),
				Message: aws.String("Access Denied"),
			})
			continue
		}
		delete(f.objects, k)
		output.Deleted = append(output.Deleted, types.DeletedObject{Key: aws.String(k)})
	}
	return output, nil
}

// DeleteBucket removes the bucket if it is empty.
func (f *FakeBucket) DeleteBucket(
	_ context.Context,
	params *s3.DeleteBucketInput,
	_ ...func(*s3.Options),
) (*s3.DeleteBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteBuckets++
	if f.FailDeleteBucket != nil {
		return nil, f.FailDeleteBucket
	}
	if f.removed || aws.ToString(params.Bucket) != f.Name {
		return nil, &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist")}
	}
	if len(f.objects) > 0 {
		return nil, &smithy.GenericAPIError{
			Code:    "BucketNotEmpty",
			Message: "The bucket you tried to delete is not empty",
		}
	}
	f.removed = true
	return &s3.DeleteBucketOutput{}, nil
}

// Remaining returns the number of objects still stored.
func (f *FakeBucket) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// Removed reports whether the bucket was deleted.
func (f *FakeBucket) Removed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removed
}

// ListCalls returns the number of ListObjectsV2 calls.
func (f *FakeBucket) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// DeleteCalls returns the keys named by each DeleteObjects call, in arrival order.
func (f *FakeBucket) DeleteCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([][]string, len(f.deleteCalls))
	copy(calls, f.deleteCalls)
	return calls
}

// DeleteBucketCalls returns the number of DeleteBucket calls.
func (f *FakeBucket) DeleteBucketCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteBuckets
}

var _ s3api.S3API = (*FakeBucket)(nil)
