package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats_Counters(t *testing.T) {
	s := New()
	defer s.Close()

	s.PageListed(1000)
	s.PageListed(3)
	s.BatchDone(1000, 0, false, 10*time.Millisecond)
	s.BatchDone(0, 0, true, 5*time.Millisecond)
	s.BatchDone(2, 1, false, 5*time.Millisecond)
	s.BucketRequest()

	assert.Equal(t, int64(2), s.Count(Pages))
	assert.Equal(t, int64(1003), s.Count(Listed))
	assert.Equal(t, int64(6), s.Count(Requests))
	assert.Equal(t, int64(1002), s.Count(Deleted))
	assert.Equal(t, int64(1), s.Count(FailedBatches))
	assert.Equal(t, int64(1), s.Count(KeyErrors))
	assert.Equal(t, int64(0), s.Count("missing"))
}

func TestStats_Isolation(t *testing.T) {
	a, b := New(), New()
	defer a.Close()
	defer b.Close()

	a.PageListed(10)
	assert.Equal(t, int64(10), a.Count(Listed))
	assert.Equal(t, int64(0), b.Count(Listed))
}

func TestStats_String(t *testing.T) {
	s := New()
	defer s.Close()
	s.PageListed(5)

	line := s.String()
	assert.True(t, strings.HasPrefix(line, "metrics:"))
	assert.Contains(t, line, " listed:5")
	assert.Contains(t, line, " pages:1")
	// sorted by name
	assert.Less(t, strings.Index(line, "batch_latency"), strings.Index(line, "listed"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "metrics:", Format(nil))
	assert.Equal(t, "metrics: a:1 b:22 c:0", Format(map[string]int64{"c": 0, "a": 1, "b": 22}))
}
