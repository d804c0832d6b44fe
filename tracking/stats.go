package tracking

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

const defaultLatencyWindow = 120

// ProducerStats is a snapshot of producer activity.
type ProducerStats struct {
	Cycles         uint64 // completed detect+publish cycles
	Faces          uint64 // cycles that published a face
	Misses         uint64 // cycles that published no face
	DetectErrors   uint64 // detector failures and malformed frames
	AcquireErrors  uint64 // skipped cycles, nothing published
	LastPublish    time.Time
	LastFace       NormalizedPosition // most recent published face, valid when HasFace
	HasFace        bool               // the latest completed cycle published a face
	LatencyMean    time.Duration      // detection latency over the recent window
	LatencyStdDev  time.Duration
	LatencySamples int
}

// FaceRate is the fraction of completed cycles that found a face.
func (s ProducerStats) FaceRate() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Faces) / float64(s.Cycles)
}

type statsRecorder struct {
	mu    sync.Mutex
	stats ProducerStats

	latencies []float64 // milliseconds, ring buffer
	next      int
	filled    bool
}

func newStatsRecorder(window int) *statsRecorder {
	if window <= 0 {
		window = defaultLatencyWindow
	}
	return &statsRecorder{latencies: make([]float64, window)}
}

func (r *statsRecorder) acquireFailed() {
	r.mu.Lock()
	r.stats.AcquireErrors++
	r.mu.Unlock()
}

func (r *statsRecorder) cycle(face, detectErr bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Cycles++
	if face {
		r.stats.Faces++
	} else {
		r.stats.Misses++
		r.stats.HasFace = false
	}
	if detectErr {
		r.stats.DetectErrors++
	}
	r.stats.LastPublish = time.Now()

	r.latencies[r.next] = float64(latency) / float64(time.Millisecond)
	r.next++
	if r.next == len(r.latencies) {
		r.next = 0
		r.filled = true
	}
}

func (r *statsRecorder) sawFace(pos NormalizedPosition) {
	r.mu.Lock()
	r.stats.LastFace = pos
	r.stats.HasFace = true
	r.mu.Unlock()
}

func (r *statsRecorder) snapshot() ProducerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.stats
	window := r.latencies[:r.next]
	if r.filled {
		window = r.latencies
	}
	out.LatencySamples = len(window)
	if len(window) == 0 {
		return out
	}

	mean, std := stat.MeanStdDev(window, nil)
	out.LatencyMean = time.Duration(mean * float64(time.Millisecond))
	if len(window) > 1 {
		out.LatencyStdDev = time.Duration(std * float64(time.Millisecond))
	}
	return out
}
