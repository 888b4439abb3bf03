package debug

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// DeadlineMonitor records how long audio callbacks take relative to the
// callback period. Observe only touches atomics, so it is safe to call from
// the audio callback.
type DeadlineMonitor struct {
	budget atomic.Int64 // nanoseconds

	count  atomic.Uint64
	missed atomic.Uint64
	total  atomic.Int64
	worst  atomic.Int64
}

// DeadlineStats is a snapshot of a DeadlineMonitor.
type DeadlineStats struct {
	Budget    time.Duration
	Callbacks uint64
	Missed    uint64
	Mean      time.Duration
	Worst     time.Duration
}

// String formats the statistics for logging.
func (s DeadlineStats) String() string {
	return fmt.Sprintf("callbacks=%d missed=%d mean=%v worst=%v budget=%v",
		s.Callbacks, s.Missed, s.Mean, s.Worst, s.Budget)
}

// Load returns the worst callback duration as a fraction of the budget.
func (s DeadlineStats) Load() float64 {
	if s.Budget <= 0 {
		return 0
	}
	return float64(s.Worst) / float64(s.Budget)
}

// NewDeadlineMonitor creates a monitor for callbacks that must finish
// within budget.
func NewDeadlineMonitor(budget time.Duration) *DeadlineMonitor {
	m := &DeadlineMonitor{}
	m.budget.Store(int64(budget))
	return m
}

// BlockBudget returns the duration of frames samples at sampleRate.
func BlockBudget(frames int, sampleRate float64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(frames) * float64(time.Second) / sampleRate))
}

// SetBudget changes the per-callback budget.
func (m *DeadlineMonitor) SetBudget(budget time.Duration) {
	m.budget.Store(int64(budget))
}

// Observe records one callback duration.
func (m *DeadlineMonitor) Observe(elapsed time.Duration) {
	ns := int64(elapsed)
	m.count.Add(1)
	m.total.Add(ns)

	if budget := m.budget.Load(); budget > 0 && ns > budget {
		m.missed.Add(1)
	}

	for {
		worst := m.worst.Load()
		if ns <= worst || m.worst.CompareAndSwap(worst, ns) {
			break
		}
	}
}

// Since records the time elapsed since start.
func (m *DeadlineMonitor) Since(start time.Time) {
	m.Observe(time.Since(start))
}

// Stats returns a snapshot of the recorded statistics.
func (m *DeadlineMonitor) Stats() DeadlineStats {
	s := DeadlineStats{
		Budget:    time.Duration(m.budget.Load()),
		Callbacks: m.count.Load(),
		Missed:    m.missed.Load(),
		Worst:     time.Duration(m.worst.Load()),
	}
	if s.Callbacks > 0 {
		s.Mean = time.Duration(m.total.Load() / int64(s.Callbacks))
	}
	return s
}

// Reset clears all statistics but keeps the budget.
func (m *DeadlineMonitor) Reset() {
	m.count.Store(0)
	m.missed.Store(0)
	m.total.Store(0)
	m.worst.Store(0)
}
