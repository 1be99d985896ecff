// Package idclock provides the strictly-monotonic millisecond timestamp
// source spec.md §4.5 requires for mutation ordering.
package idclock

import (
	"sync"
	"time"
)

// Source hands out strictly increasing millisecond timestamps within a
// session. Two calls, even back to back on a fast clock, never return
// the same value (spec.md §4.5, tested by scenario 6's equal-timestamp
// tiebreak).
type Source struct {
	mu   sync.Mutex
	last float64
	now  func() float64
}

// New returns a Source backed by the wall clock.
func New() *Source {
	return &Source{now: wallClockMillis}
}

func wallClockMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}

// Next returns the next strictly-increasing timestamp.
func (s *Source) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	reading := s.now()
	if reading <= s.last {
		reading = s.last + 0.0001
	}
	s.last = reading
	return reading
}
