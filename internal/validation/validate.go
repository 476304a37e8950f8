// Package validation checks user input before any request reaches S3.
//
// Bucket names are checked leniently: buckets created before the DNS naming
// rules (upper case letters, underscores) still exist and must be purgeable,
// so only names S3 could never accept are rejected.
package validation

import (
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
)

// maxBucketNameLength is the legacy us-east-1 limit; current rules allow 63.
const maxBucketNameLength = 255

// ValidateBucketName returns ErrInvalidBucketName if bucket can never name an S3 bucket.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return invalid(bucket, "bucket name cannot be empty")
	}

	if len(bucket) > maxBucketNameLength {
		return invalid(bucket, "bucket name cannot exceed 255 characters")
	}

	if strings.Contains(bucket, "/") {
		return invalid(bucket, "bucket name cannot contain '/'")
	}

	for _, r := range bucket {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return invalid(bucket, "bucket name cannot contain whitespace or control characters")
		}
		if r > unicode.MaxASCII {
			return invalid(bucket, "bucket name must be ASCII")
		}
	}

	return nil
}

func invalid(bucket, message string) error {
	return errors.NewBucketError("validateBucketName", bucket, errors.ErrInvalidBucketName).
		WithMessage(message)
}
