// Package s3purge empties an S3 bucket as fast as S3 allows and then removes it.
//
// Keys are listed page by page and grouped into batches of up to 1000, the
// DeleteObjects limit. Batches are queued in listing order to a fixed pool of
// workers, each issuing one DeleteObjects request per batch, while a shared
// counter tracks how many objects S3 reported as deleted. Once every queued
// batch has finished the bucket itself is deleted.
//
// A failed batch is reported and skipped; the run carries on. A listing
// failure stops the queueing of new batches and the bucket is kept, since it
// is known to still hold objects.
//
// Example:
//
//	client, err := s3purge.New(s3purge.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//	report, err := client.Purge(ctx, "my-bucket", s3purge.WithWorkers(32))
//	if err != nil {
//	    return err
//	}
//	if err := report.Err(); err != nil {
//	    log.Printf("purge incomplete: %v", err)
//	}
package s3purge
