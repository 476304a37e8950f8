// Package progress tracks the running total of deleted objects.
package progress

import (
	"fmt"
	"sync"
)

// Counter is the shared deletion counter.
// Increments and the change callback run under one mutex, so the callback
// observes totals in increasing order and never concurrently with itself.
type Counter struct {
	mu       sync.Mutex
	total    int64
	onChange func(total int64)
}

// NewCounter creates a counter starting at zero. onChange may be nil.
func NewCounter(onChange func(total int64)) *Counter {
	return &Counter{onChange: onChange}
}

// Add increments the counter by n and returns the new total.
func (c *Counter) Add(n int) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total += int64(n)
	if c.onChange != nil {
		c.onChange(c.total)
	}
	return c.total
}

// Total returns the current total.
func (c *Counter) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Line renders the progress line for total, in thousands.
func Line(total int64) string {
	return fmt.Sprintf("Deleted: %dK objects", total/1000)
}
