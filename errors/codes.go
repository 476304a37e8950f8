package errors

import (
	"context"
	"errors"
)

// ErrorCode classifies a purge failure.
// Codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates the bucket (or a key) does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a resource state conflict, such as removing a non-empty bucket.
	CodeConflict ErrorCode = "CONFLICT"

	// Permission errors.

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Infrastructure errors.

	// CodeTimeout indicates a request exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCanceled indicates the run was canceled before the request finished.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeRateLimit indicates the service throttled the request.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Generic errors.

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf classifies err into an ErrorCode. A nil error has no code.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBucketNotFound), errors.Is(err, ErrObjectNotFound):
		return CodeNotFound
	case errors.Is(err, ErrBucketNotEmpty):
		return CodeConflict
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidBucketName):
		return CodeInvalidInput
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, ErrTooManyRequests):
		return CodeRateLimit
	}
	return CodeUnknown
}

// CodeFromAWS maps an S3 error code string, as found in DeleteObjects per-key
// errors or smithy API errors, onto an ErrorCode.
func CodeFromAWS(code string) ErrorCode {
	switch code {
	case "NoSuchBucket", "NoSuchKey", "NotFound":
		return CodeNotFound
	case "BucketNotEmpty", "OperationAborted":
		return CodeConflict
	case "AccessDenied", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return CodeForbidden
	case "InvalidBucketName", "InvalidArgument", "MalformedXML", "InvalidRequest":
		return CodeInvalidInput
	case "RequestTimeout":
		return CodeTimeout
	case "SlowDown", "Throttling", "ThrottlingException", "TooManyRequests", "RequestLimitExceeded":
		return CodeRateLimit
	}
	return CodeUnknown
}
