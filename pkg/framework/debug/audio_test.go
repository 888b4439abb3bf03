package debug

import (
	"math"
	"strings"
	"testing"
)

func TestMeter(t *testing.T) {
	t.Run("Sine", func(t *testing.T) {
		m := NewMeter()

		buffer := make([]float32, 1000)
		for i := range buffer {
			buffer[i] = 0.5 * float32(math.Sin(2*math.Pi*441*float64(i)/44100))
		}
		// Two blocks of the same signal must give the same statistics.
		m.Add(buffer[:500])
		m.Add(buffer[500:])

		r := m.Result()
		if r.Samples != 1000 {
			t.Errorf("Expected 1000 samples, got %d", r.Samples)
		}
		if r.Peak < 0.49 || r.Peak > 0.51 {
			t.Errorf("Peak incorrect: %f", r.Peak)
		}
		expectedRMS := 0.5 / math.Sqrt(2)
		if math.Abs(float64(r.RMS)-expectedRMS) > 0.01 {
			t.Errorf("RMS incorrect: %f, expected ~%f", r.RMS, expectedRMS)
		}
		if r.Silent {
			t.Error("Should not be silent")
		}
	})

	t.Run("ClippingAndNaN", func(t *testing.T) {
		r := Analyze([]float32{0.5, 0.99, 1.0, -0.99, float32(math.NaN()), 0})
		if r.ClippedSamples != 3 {
			t.Errorf("Expected 3 clipped samples, got %d", r.ClippedSamples)
		}
		if r.NaNCount != 1 {
			t.Errorf("Expected 1 NaN, got %d", r.NaNCount)
		}
		if !strings.Contains(r.String(), "nan=1") {
			t.Errorf("Unexpected report %q", r.String())
		}
	})

	t.Run("Silence", func(t *testing.T) {
		r := Analyze(make([]float32, 64))
		if !r.Silent {
			t.Error("Zero buffer should be silent")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		m := NewMeter()
		m.ClippingThreshold = 0.5
		m.Add([]float32{0.7})
		m.Reset()
		if r := m.Result(); r.Samples != 0 || r.Peak != 0 {
			t.Errorf("Reset left %+v", r)
		}
		if m.ClippingThreshold != 0.5 {
			t.Error("Reset dropped thresholds")
		}
	})
}

func TestAllZero(t *testing.T) {
	if !AllZero(make([]float32, 8)) {
		t.Error("Expected zero buffer")
	}
	if AllZero([]float32{0, 0, 1e-9}) {
		t.Error("Expected non-zero buffer")
	}
}
