package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 100; i++ {
		r.Record(time.Duration(i) * time.Millisecond)
	}

	snap := r.Snapshot()
	assert.Equal(t, int64(100), snap.Count)
	assert.InDelta(t, (50 * time.Millisecond).Microseconds(), snap.P50.Microseconds(), 1000)
	assert.InDelta(t, (95 * time.Millisecond).Microseconds(), snap.P95.Microseconds(), 1000)
	assert.InDelta(t, (100 * time.Millisecond).Microseconds(), snap.Max.Microseconds(), 1000)
	assert.LessOrEqual(t, snap.P50, snap.P95)
	assert.LessOrEqual(t, snap.P95, snap.P99)
}

func TestRecorder_Empty(t *testing.T) {
	snap := NewRecorder().Snapshot()
	assert.Zero(t, snap.Count)
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Record(time.Millisecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), r.Snapshot().Count)
}
