package debug

import (
	"fmt"
	"math"
)

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NaNCount       int
	Silent         bool
}

// String formats the result for a render report.
func (r AnalysisResult) String() string {
	return fmt.Sprintf("samples=%d peak=%.3f rms=%.4f dc=%.5f clipped=%d nan=%d silent=%t",
		r.Samples, r.Peak, r.RMS, r.DC, r.ClippedSamples, r.NaNCount, r.Silent)
}

// Meter accumulates statistics over consecutive blocks of one signal.
type Meter struct {
	ClippingThreshold float32
	SilenceThreshold  float32

	samples    int
	peak       float32
	sum        float64
	sumSquares float64
	clipped    int
	nan        int
}

// NewMeter creates a meter with default thresholds.
func NewMeter() *Meter {
	return &Meter{
		ClippingThreshold: 0.99,
		SilenceThreshold:  0.0001,
	}
}

// Add accumulates one block of samples.
func (m *Meter) Add(buffer []float32) {
	for _, sample := range buffer {
		if math.IsNaN(float64(sample)) {
			m.nan++
			continue
		}

		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > m.peak {
			m.peak = abs
		}
		if abs >= m.ClippingThreshold {
			m.clipped++
		}

		m.sum += float64(sample)
		m.sumSquares += float64(sample) * float64(sample)
		m.samples++
	}
}

// Result returns the statistics accumulated so far.
func (m *Meter) Result() AnalysisResult {
	r := AnalysisResult{
		Samples:        m.samples + m.nan,
		Peak:           m.peak,
		ClippedSamples: m.clipped,
		NaNCount:       m.nan,
	}
	if m.samples > 0 {
		r.RMS = float32(math.Sqrt(m.sumSquares / float64(m.samples)))
		r.DC = float32(m.sum / float64(m.samples))
	}
	r.Silent = r.RMS < m.SilenceThreshold
	return r
}

// Reset clears the accumulated statistics.
func (m *Meter) Reset() {
	*m = Meter{
		ClippingThreshold: m.ClippingThreshold,
		SilenceThreshold:  m.SilenceThreshold,
	}
}

// Analyze performs a one-shot analysis of buffer.
func Analyze(buffer []float32) AnalysisResult {
	m := NewMeter()
	m.Add(buffer)
	return m.Result()
}

// AllZero reports whether every sample in buffer is exactly zero.
func AllZero(buffer []float32) bool {
	for _, s := range buffer {
		if s != 0 {
			return false
		}
	}
	return true
}
