// Package stats records per-example durations into an HDR histogram and
// exposes percentile snapshots for end-of-run reporting.
package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Recorder accumulates example durations. Safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
}

// Snapshot is a point-in-time view of the recorded durations.
type Snapshot struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// NewRecorder returns an empty recorder covering 1us to 10m with three
// significant digits, enough resolution for per-example timings.
func NewRecorder() *Recorder {
	return &Recorder{
		histogram: hdrhistogram.New(1, 600_000_000, 3),
	}
}

// Record adds one example duration.
func (r *Recorder) Record(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.histogram.RecordValue(d.Microseconds())
}

// Snapshot returns the current percentile view.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Count: r.histogram.TotalCount(),
		P50:   time.Duration(r.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(r.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(r.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:   time.Duration(r.histogram.Max()) * time.Microsecond,
	}
}
