//go:build integration
// +build integration

package s3purge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/testutil"
)

// TestIntegrationPurge purges real buckets on LocalStack.
func TestIntegrationPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, cleanup := testutil.SetupLocalStackTest(t)
	defer cleanup()

	s3Client, err := container.GetS3Client(ctx)
	require.NoError(t, err)

	cfg, err := container.AWSConfig(ctx)
	require.NoError(t, err)

	client, err := s3purge.New(
		s3purge.WithAWSConfig(&cfg),
		s3purge.WithEndpoint(container.Endpoint()),
		s3purge.WithForcePathStyle(true),
	)
	require.NoError(t, err)

	t.Run("bucket with several batches", func(t *testing.T) {
		bucket := testutil.GenerateTestBucketName("purge")
		keys := testutil.GenerateKeys(2345, "data/")
		require.NoError(t, testutil.SeedBucket(ctx, s3Client, bucket, keys))

		report, err := client.Purge(ctx, bucket, s3purge.WithWorkers(8))
		require.NoError(t, err)

		assert.NoError(t, report.Err())
		assert.Equal(t, int64(2345), report.Listed)
		assert.Equal(t, int64(2345), report.Deleted)
		assert.Equal(t, 3, report.Batches())
		assert.True(t, report.BucketRemoved)

		exists, err := testutil.BucketExists(ctx, s3Client, bucket)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("empty bucket", func(t *testing.T) {
		bucket := testutil.GenerateTestBucketName("empty")
		require.NoError(t, testutil.SeedBucket(ctx, s3Client, bucket, nil))

		report, err := client.Purge(ctx, bucket)
		require.NoError(t, err)

		assert.Equal(t, 0, report.Batches())
		assert.True(t, report.BucketRemoved)
	})

	t.Run("keep bucket", func(t *testing.T) {
		bucket := testutil.GenerateTestBucketName("keep")
		require.NoError(t, testutil.SeedBucket(ctx, s3Client, bucket, testutil.GenerateKeys(10, "")))

		report, err := client.Purge(ctx, bucket, s3purge.WithKeepBucket(true))
		require.NoError(t, err)

		assert.Equal(t, int64(10), report.Deleted)
		exists, err := testutil.BucketExists(ctx, s3Client, bucket)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, client.DeleteBucket(ctx, bucket))
	})

	t.Run("missing bucket", func(t *testing.T) {
		report, err := client.Purge(ctx, testutil.GenerateTestBucketName("missing"))
		require.NoError(t, err)

		require.Error(t, report.ListErr)
		assert.True(t, errors.IsBucketNotFound(report.ListErr))
		assert.False(t, report.BucketRemoved)
	})
}
