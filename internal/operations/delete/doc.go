// Package delete handles batch deletion of S3 objects.
//
// Each batch is removed with a single DeleteObjects request of at most
// 1000 keys. The number of keys S3 reports as deleted is added to the shared
// deletion counter; a request that fails contributes nothing and is reported
// in the batch outcome instead of stopping the run.
package delete
