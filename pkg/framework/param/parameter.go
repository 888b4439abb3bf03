package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Kind describes how a parameter value is interpreted.
type Kind int

const (
	// KindFloat is a continuous value.
	KindFloat Kind = iota
	// KindInt is an integer value stored as float.
	KindInt
	// KindChoice is an index into a list of named options.
	KindChoice
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Parameter represents a plugin parameter.
//
// Values are plain (not normalized) and always lie within [Min, Max].
// Reads and writes are lock-free, so the audio thread may call Value at any
// time.
type Parameter struct {
	Index        int    // Position in the owning registry, assigned on registration
	ID           string // Stable string key, also used across the engine boundary
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // Plain value
	StepCount    int32
	Flags        uint32
	Kind         Kind
	Options      []string // Option names for KindChoice

	// Atomic value for lock-free access in audio thread
	value atomic.Uint64

	// Value formatting
	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsList      uint32 = 1 << 3
)

// Value returns the current plain value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// Int returns the current value rounded to the nearest integer.
func (p *Parameter) Int() int {
	return int(math.Round(p.Value()))
}

// Normalized returns the current value mapped to 0-1.
func (p *Parameter) Normalized() float64 {
	return p.Normalize(p.Value())
}

// store writes an already clamped value.
func (p *Parameter) store(plain float64) {
	p.value.Store(math.Float64bits(plain))
}

// Clamp limits a plain value to the declared range and snaps discrete
// parameters to whole steps. NaN maps to the default value.
func (p *Parameter) Clamp(plain float64) float64 {
	if math.IsNaN(plain) {
		return p.DefaultValue
	}
	if plain < p.Min {
		plain = p.Min
	} else if plain > p.Max {
		plain = p.Max
	}
	if p.Kind != KindFloat {
		plain = math.Round(plain)
	}
	return plain
}

// InRange reports whether plain lies inside the declared range.
func (p *Parameter) InRange(plain float64) bool {
	return plain >= p.Min && plain <= p.Max
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns the display text for a plain value.
func (p *Parameter) FormatValue(plain float64) string {
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	if p.Kind == KindChoice {
		i := int(math.Round(plain))
		if i >= 0 && i < len(p.Options) {
			return p.Options[i]
		}
		return "Unknown"
	}
	if p.Kind == KindInt {
		return strconv.Itoa(int(math.Round(plain)))
	}
	return fmt.Sprintf("%.2f", plain)
}

// Text returns the display text of the current value.
func (p *Parameter) Text() string {
	return p.FormatValue(p.Value())
}

// ParseValue parses display text into a plain value.
func (p *Parameter) ParseValue(str string) (float64, error) {
	if p.parseFunc != nil {
		plain, err := p.parseFunc(str)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrParse, p.ID, err)
		}
		return p.Clamp(plain), nil
	}
	plain, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrParse, p.ID, err)
	}
	return p.Clamp(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Clamp(p.Min + normalized*(p.Max-p.Min))
}
