// Package batch groups object keys into DeleteObjects-sized batches.
package batch

import (
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/s3types"
)

// Batcher accumulates keys and emits a batch each time size keys are pending.
// Batches carry consecutive sequence numbers in emission order.
// A Batcher is not safe for concurrent use; it belongs to the producer.
type Batcher struct {
	size    int
	pending []string
	next    int
}

// New creates a Batcher emitting batches of at most size keys.
// Sizes outside (0, s3types.MaxBatchSize] fall back to s3types.MaxBatchSize.
func New(size int) *Batcher {
	if size <= 0 || size > s3types.MaxBatchSize {
		size = s3types.MaxBatchSize
	}
	return &Batcher{
		size:    size,
		pending: make([]string, 0, size),
	}
}

// Size returns the maximum batch size.
func (b *Batcher) Size() int {
	return b.size
}

// Add appends a key. It returns a full batch and true once size keys are pending.
func (b *Batcher) Add(key string) (s3types.Batch, bool) {
	b.pending = append(b.pending, key)
	if len(b.pending) < b.size {
		return s3types.Batch{}, false
	}
	return b.emit(), true
}

// Flush returns the pending keys as a final, possibly short, batch.
// It returns false when nothing is pending; an empty batch is never emitted.
func (b *Batcher) Flush() (s3types.Batch, bool) {
	if len(b.pending) == 0 {
		return s3types.Batch{}, false
	}
	return b.emit(), true
}

// Emitted returns the number of batches emitted so far.
func (b *Batcher) Emitted() int {
	return b.next
}

func (b *Batcher) emit() s3types.Batch {
	batch := s3types.Batch{Seq: b.next, Keys: b.pending}
	b.next++
	// the emitted slice now belongs to the batch
	b.pending = make([]string, 0, b.size)
	return batch
}

// Split partitions keys into batches of at most size keys, preserving order.
func Split(keys []string, size int) []s3types.Batch {
	b := New(size)
	batches := make([]s3types.Batch, 0, (len(keys)+b.size-1)/b.size)

	for _, key := range keys {
		if batch, ok := b.Add(key); ok {
			batches = append(batches, batch)
		}
	}
	if batch, ok := b.Flush(); ok {
		batches = append(batches, batch)
	}

	return batches
}
