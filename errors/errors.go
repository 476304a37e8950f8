// Package errors provides error types and classification for bucket purge operations.
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Error represents a failed storage operation with context about what was attempted.
// It wraps the underlying AWS SDK error so errors.Is and errors.As keep working.
type Error struct {
	// Op is the operation that failed (e.g., "list", "deleteObjects", "deleteBucket")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("s3.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// Sentinel errors for common failures. Use errors.Is for checks.
var (
	// ErrObjectNotFound indicates that an object does not exist
	ErrObjectNotFound = errors.New("s3: object not found")

	// ErrBucketNotFound indicates that the bucket does not exist
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3: invalid input")

	// ErrBucketNotEmpty indicates that the bucket is not empty and cannot be deleted
	ErrBucketNotEmpty = errors.New("s3: bucket not empty")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3: invalid bucket name")

	// ErrTooManyRequests indicates that the request rate is too high
	ErrTooManyRequests = errors.New("s3: too many requests")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = errors.New("s3: operation timeout")

	// ErrCanceled indicates that the operation was canceled
	ErrCanceled = errors.New("s3: operation canceled")
)

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsBucketNotEmpty checks if an error indicates the bucket still holds objects.
func IsBucketNotEmpty(err error) bool {
	return errors.Is(err, ErrBucketNotEmpty)
}

// sentinelError carries a sentinel for errors.Is while keeping the original
// SDK error reachable through errors.As.
type sentinelError struct {
	sentinel error
	cause    error
}

func (e *sentinelError) Error() string {
	return fmt.Sprintf("%v: %v", e.sentinel, e.cause)
}

func (e *sentinelError) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}

// ConvertAWSError maps AWS SDK errors onto the sentinel errors of this package.
// Errors it cannot classify are returned unchanged.
func ConvertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var sentinel error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		sentinel = ErrTimeout
	case errors.Is(err, context.Canceled):
		sentinel = ErrCanceled
	}

	var noSuchBucket *types.NoSuchBucket
	if sentinel == nil && errors.As(err, &noSuchBucket) {
		sentinel = ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if sentinel == nil && errors.As(err, &apiErr) {
		switch CodeFromAWS(apiErr.ErrorCode()) {
		case CodeNotFound:
			sentinel = ErrBucketNotFound
		case CodeConflict:
			sentinel = ErrBucketNotEmpty
		case CodeForbidden:
			sentinel = ErrAccessDenied
		case CodeInvalidInput:
			sentinel = ErrInvalidInput
		case CodeTimeout:
			sentinel = ErrTimeout
		case CodeRateLimit:
			sentinel = ErrTooManyRequests
		}
	}

	if sentinel == nil {
		return err
	}
	return &sentinelError{sentinel: sentinel, cause: err}
}
