package book

import (
	"math"
	"sync/atomic"
	"time"
)

// Stats holds the book's running instrumentation. All fields are
// atomics: the matching path has a single writer, but reporting code
// on other goroutines may read at any time. Min and max are
// maintained with CAS loops rather than plain stores so those reads
// stay coherent.
type Stats struct {
	orders     atomic.Uint64
	trades     atomic.Uint64
	latencySum atomic.Uint64 // nanoseconds
	latencyMin atomic.Uint64 // nanoseconds, MaxUint64 until first sample
	latencyMax atomic.Uint64 // nanoseconds
}

func newStats() *Stats {
	s := &Stats{}
	s.latencyMin.Store(math.MaxUint64)
	return s
}

// recordSubmission folds one submission's wall-clock latency into the
// running sum/count/min/max.
func (s *Stats) recordSubmission(d time.Duration) {
	ns := uint64(d.Nanoseconds())
	s.orders.Add(1)
	s.latencySum.Add(ns)
	for {
		cur := s.latencyMin.Load()
		if ns >= cur || s.latencyMin.CompareAndSwap(cur, ns) {
			break
		}
	}
	for {
		cur := s.latencyMax.Load()
		if ns <= cur || s.latencyMax.CompareAndSwap(cur, ns) {
			break
		}
	}
}

func (s *Stats) recordTrade() {
	s.trades.Add(1)
}

// OrdersProcessed reports the number of completed submissions.
func (s *Stats) OrdersProcessed() uint64 {
	return s.orders.Load()
}

// TradesExecuted reports the number of trades appended to the log.
func (s *Stats) TradesExecuted() uint64 {
	return s.trades.Load()
}

// AvgLatency reports the mean submission latency, zero before the
// first submission.
func (s *Stats) AvgLatency() time.Duration {
	n := s.orders.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(s.latencySum.Load() / n)
}

// MinLatency reports the fastest submission seen, zero before the
// first submission.
func (s *Stats) MinLatency() time.Duration {
	v := s.latencyMin.Load()
	if v == math.MaxUint64 {
		return 0
	}
	return time.Duration(v)
}

// MaxLatency reports the slowest submission seen.
func (s *Stats) MaxLatency() time.Duration {
	return time.Duration(s.latencyMax.Load())
}
