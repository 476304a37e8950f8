// Package stats records purge run metrics on a go-metrics registry.
package stats

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metric names.
const (
	Pages         = "pages"
	Listed        = "listed"
	Requests      = "requests"
	Deleted       = "deleted"
	FailedBatches = "failed_batches"
	KeyErrors     = "key_errors"
	DeleteRate    = "delete_rate"
	BatchLatency  = "batch_latency"
)

// Stats holds the metrics of one purge run.
// Each Stats owns a private registry so concurrent runs do not share counters.
type Stats struct {
	registry metrics.Registry

	pages         metrics.Counter
	listed        metrics.Counter
	requests      metrics.Counter
	deleted       metrics.Counter
	failedBatches metrics.Counter
	keyErrors     metrics.Counter
	deleteRate    metrics.Meter
	batchLatency  metrics.Timer
}

// New creates a Stats with a fresh registry.
func New() *Stats {
	r := metrics.NewRegistry()
	return &Stats{
		registry:      r,
		pages:         metrics.NewRegisteredCounter(Pages, r),
		listed:        metrics.NewRegisteredCounter(Listed, r),
		requests:      metrics.NewRegisteredCounter(Requests, r),
		deleted:       metrics.NewRegisteredCounter(Deleted, r),
		failedBatches: metrics.NewRegisteredCounter(FailedBatches, r),
		keyErrors:     metrics.NewRegisteredCounter(KeyErrors, r),
		deleteRate:    metrics.NewRegisteredMeter(DeleteRate, r),
		batchLatency:  metrics.NewRegisteredTimer(BatchLatency, r),
	}
}

// PageListed records one listing page holding keys keys.
func (s *Stats) PageListed(keys int) {
	s.requests.Inc(1)
	s.pages.Inc(1)
	s.listed.Inc(int64(keys))
}

// BatchDone records one DeleteObjects request.
func (s *Stats) BatchDone(deleted, keyErrors int, failed bool, took time.Duration) {
	s.requests.Inc(1)
	s.batchLatency.Update(took)
	if failed {
		s.failedBatches.Inc(1)
		return
	}
	s.deleted.Inc(int64(deleted))
	s.deleteRate.Mark(int64(deleted))
	s.keyErrors.Inc(int64(keyErrors))
}

// BucketRequest records the DeleteBucket request.
func (s *Stats) BucketRequest() {
	s.requests.Inc(1)
}

// Count returns the value of the named counter, or zero if there is none.
func (s *Stats) Count(name string) int64 {
	if c, ok := s.registry.Get(name).(metrics.Counter); ok {
		return c.Count()
	}
	return 0
}

// Snapshot returns every metric as an integer value. Meters report their
// mean rate per second, timers their mean latency in milliseconds.
func (s *Stats) Snapshot() map[string]int64 {
	values := make(map[string]int64)
	s.registry.Each(func(name string, i interface{}) {
		switch metric := i.(type) {
		case metrics.Counter:
			values[name] = metric.Count()
		case metrics.Meter:
			values[name] = int64(metric.Snapshot().RateMean())
		case metrics.Timer:
			values[name] = time.Duration(int64(metric.Snapshot().Mean())).Milliseconds()
		}
	})
	return values
}

// String renders the snapshot as a single "metrics:" line.
func (s *Stats) String() string {
	return Format(s.Snapshot())
}

// Format renders values as a single "metrics:" line sorted by name.
func Format(values map[string]int64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buffer bytes.Buffer
	buffer.WriteString("metrics:")
	for _, k := range keys {
		buffer.WriteString(fmt.Sprintf(" %s:%s", k, strconv.FormatInt(values[k], 10)))
	}
	return buffer.String()
}

// Close unregisters every metric, stopping the meter's ticker.
func (s *Stats) Close() {
	s.registry.UnregisterAll()
}
