package translate

import "time"

// Stats describes a translation run. Total is fixed when the run starts and
// Processed only grows by whole batches, so Processed == Total exactly when
// every batch has been handled.
type Stats struct {
	Total       int       `json:"total"`
	Processed   int       `json:"processed"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Elapsed returns how long the run has been going, or its final duration once
// completed. Zero before the run starts.
func (s Stats) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if !s.CompletedAt.IsZero() {
		return s.CompletedAt.Sub(s.StartedAt)
	}
	return time.Since(s.StartedAt)
}

// Throughput returns processed segments per second of elapsed time. Zero when
// no time has passed.
func (s Stats) Throughput() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Processed) / elapsed
}
