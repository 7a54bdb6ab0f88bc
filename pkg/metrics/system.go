package metrics

import (
	"context"
	"runtime"
	"time"
)

const nanosecondsPerMillisecond = 1e6

// RunSystemSampler samples runtime memory, goroutine and GC figures until ctx
// is done. A non-positive interval falls back to the manager refresh interval.
func RunSystemSampler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = globalManager.sampleInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	SampleSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SampleSystem()
		}
	}
}

// SampleSystem records one sample of the runtime figures.
func SampleSystem() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	UpdateSystemMemoryUsage(m.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond)
	}
}
