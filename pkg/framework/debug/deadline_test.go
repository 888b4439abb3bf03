package debug

import (
	"sync"
	"testing"
	"time"
)

func TestDeadlineMonitor(t *testing.T) {
	m := NewDeadlineMonitor(10 * time.Millisecond)

	m.Observe(2 * time.Millisecond)
	m.Observe(4 * time.Millisecond)
	m.Observe(12 * time.Millisecond)

	s := m.Stats()
	if s.Callbacks != 3 {
		t.Errorf("Expected 3 callbacks, got %d", s.Callbacks)
	}
	if s.Missed != 1 {
		t.Errorf("Expected 1 missed deadline, got %d", s.Missed)
	}
	if s.Worst != 12*time.Millisecond {
		t.Errorf("Expected worst 12ms, got %v", s.Worst)
	}
	if s.Mean != 6*time.Millisecond {
		t.Errorf("Expected mean 6ms, got %v", s.Mean)
	}
	if s.Load() != 1.2 {
		t.Errorf("Expected load 1.2, got %v", s.Load())
	}

	m.Reset()
	if s := m.Stats(); s.Callbacks != 0 || s.Worst != 0 || s.Budget != 10*time.Millisecond {
		t.Errorf("Reset left %+v", s)
	}
}

func TestDeadlineMonitorConcurrent(t *testing.T) {
	m := NewDeadlineMonitor(time.Second)

	var wg sync.WaitGroup
	for w := 1; w <= 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				m.Observe(time.Duration(w) * time.Microsecond)
			}
		}(w)
	}
	wg.Wait()

	s := m.Stats()
	if s.Callbacks != 4000 {
		t.Errorf("Expected 4000 callbacks, got %d", s.Callbacks)
	}
	if s.Worst != 4*time.Microsecond {
		t.Errorf("Expected worst 4µs, got %v", s.Worst)
	}
}

func TestBlockBudget(t *testing.T) {
	if got := BlockBudget(441, 44100); got != 10*time.Millisecond {
		t.Errorf("BlockBudget(441, 44100) = %v", got)
	}
	if got := BlockBudget(512, 0); got != 0 {
		t.Errorf("BlockBudget with zero rate = %v", got)
	}
}
