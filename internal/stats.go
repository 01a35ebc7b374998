package internal

import (
	"sync/atomic"
	"time"
)

// BatchStats atomic counters for totals
type BatchStats struct {
	start    time.Time
	Requests atomic.Int64
	Matched  atomic.Int64
	Empty    atomic.Int64
	Errors   atomic.Int64
}

func (s *BatchStats) Start() {
	s.start = time.Now()
}

func (s *BatchStats) Elapsed() time.Duration {
	return time.Since(s.start)
}
