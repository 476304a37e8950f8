package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/internal/stats"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// console writes the human readable run output. The progress line is
// rewritten in place with a carriage return; errors start on a fresh line.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) Started(bucket string) {
	c.printf("Starting deletion of bucket: %s\n", bucket)
}

func (c *console) Deleted(total int64) {
	c.printf("%s\r", progress.Line(total))
}

func (c *console) BatchFailed(outcome s3types.BatchOutcome) {
	c.printf("\nError deleting batch: %v\n", outcome.Err)
}

// Finish prints the final status of the run.
func (c *console) Finish(report *s3types.Report, keepBucket, metrics bool) {
	switch {
	case report.ListErr != nil:
		c.printf("\nError listing bucket: %v\n", report.ListErr)
		c.printf("Bucket '%s' not deleted: listing did not complete.\n", report.Bucket)
	case report.BucketErr != nil:
		c.printf("\nError deleting bucket: %v\n", report.BucketErr)
	case report.BucketRemoved:
		c.printf("\nBucket '%s' deleted successfully.\n", report.Bucket)
	case keepBucket:
		c.printf("\nBucket '%s' emptied, %d objects deleted.\n", report.Bucket, report.Deleted)
	}

	if metrics {
		c.printf("%s\n", stats.Format(report.Metrics))
	}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}
