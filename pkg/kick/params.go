// Package kick is the kick-drum instrument: its parameter table, the router
// that feeds parameter changes to the engine, the derived note labels of the
// four voice slots and the block processor.
package kick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/midi"
)

// Key is the stable index of a declared parameter. It equals the
// parameter's registry index and its engine slot.
type Key int

const (
	Octave1 Key = iota
	Note1
	Timing1
	Octave2
	Note2
	Timing2
	Octave3
	Note3
	Timing3
	Octave4
	Note4
	Timing4
	AmpAttack
	AmpDecay
	AmpSustain
	AmpRelease
	AmpExpFactor
	Phase
	WaveType
	Drive
	SaturationType

	NumKeys
)

// SlotCount is the number of voice slots.
const SlotCount = 4

// Role is the part a parameter plays within its voice slot.
type Role int

const (
	RoleNone Role = iota
	RoleOctave
	RoleNote
	RoleTiming
)

// Slot returns the 1-based voice slot of k and its role there, or
// (0, RoleNone) for parameters outside the slots.
func (k Key) Slot() (int, Role) {
	if k < Octave1 || k > Timing4 {
		return 0, RoleNone
	}
	return int(k)/3 + 1, Role(int(k)%3 + 1)
}

// OctaveKey returns the octave parameter of a 1-based slot.
func OctaveKey(slot int) Key { return Key((slot - 1) * 3) }

// NoteKey returns the note parameter of a 1-based slot.
func NoteKey(slot int) Key { return Key((slot-1)*3 + 1) }

// TimingKey returns the timing parameter of a 1-based slot.
func TimingKey(slot int) Key { return Key((slot-1)*3 + 2) }

func (k Key) String() string {
	if k >= 0 && k < NumKeys {
		return declarations[k].id
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

var (
	waveTypes       = []string{"Sine", "909"}
	saturationTypes = []string{"None", "Soft", "Clip", "ExtremeClip"}
	slotTimingMax   = [SlotCount]float64{10, 10, 50, 300}
	slotDefaults    = [SlotCount]struct {
		octave, note int
		timing       float64
	}{
		{8, 0, 0},
		{4, 7, 2.12},
		{3, 5, 16.55},
		{1, 9, 69.09},
	}
)

type declaration struct {
	id    string
	build func(id string) *param.Builder
}

var declarations = buildDeclarations()

func buildDeclarations() [NumKeys]declaration {
	var d [NumKeys]declaration
	for slot := 1; slot <= SlotCount; slot++ {
		def := slotDefaults[slot-1]
		maxMs := slotTimingMax[slot-1]
		n := strconv.Itoa(slot)

		d[OctaveKey(slot)] = declaration{"octave_" + n, func(id string) *param.Builder {
			return param.Int(id, "Octave "+n, 0, 10, def.octave)
		}}
		d[NoteKey(slot)] = declaration{"note_" + n, func(id string) *param.Builder {
			return param.Int(id, "Note "+n, 0, 11, def.note).
				Formatter(PitchClassFormatter, PitchClassParser)
		}}
		d[TimingKey(slot)] = declaration{"timing_" + n, func(id string) *param.Builder {
			return param.TimeParameter(id, "Timing "+n+" (ms)", 0, maxMs, def.timing)
		}}
	}

	d[AmpAttack] = declaration{"amp_attack", func(id string) *param.Builder {
		return param.TimeParameter(id, "Amp Attack (ms)", 0, 10, 0.65)
	}}
	d[AmpDecay] = declaration{"amp_decay", func(id string) *param.Builder {
		return param.TimeParameter(id, "Amp Decay (ms)", 0, 50, 10)
	}}
	d[AmpSustain] = declaration{"amp_sustain", func(id string) *param.Builder {
		return param.PercentParameter(id, "Amp Sustain %", 100)
	}}
	d[AmpRelease] = declaration{"amp_release", func(id string) *param.Builder {
		return param.TimeParameter(id, "Amp Release (ms)", 0, 1000, 419.43)
	}}
	d[AmpExpFactor] = declaration{"amp_exponential_factor_a", func(id string) *param.Builder {
		return param.New(id, "Amp Exponential Factor A").Range(1, 10).Default(4.31)
	}}
	d[Phase] = declaration{"phase", func(id string) *param.Builder {
		return param.New(id, "Phase").Range(0, 1).Default(0)
	}}
	d[WaveType] = declaration{"waveType", func(id string) *param.Builder {
		return param.Choice(id, "Wave Type", waveTypes...)
	}}
	d[Drive] = declaration{"driveDb", func(id string) *param.Builder {
		return param.DecibelParameter(id, "Drive", 0, 24, 0)
	}}
	d[SaturationType] = declaration{"saturationType", func(id string) *param.Builder {
		return param.Choice(id, "Saturation Type", saturationTypes...)
	}}
	return d
}

// NewParameters builds the registry of every declared parameter in Key
// order.
func NewParameters() (*param.Registry, error) {
	params := make([]*param.Parameter, NumKeys)
	for k, d := range declarations {
		params[k] = d.build(d.id).Build()
	}
	return param.NewRegistry(params...)
}

// IDs returns the parameter ids in Key order.
func IDs() []string {
	ids := make([]string, NumKeys)
	for k, d := range declarations {
		ids[k] = d.id
	}
	return ids
}

// KeyOf resolves a parameter id.
func KeyOf(id string) (Key, error) {
	for k, d := range declarations {
		if d.id == id {
			return Key(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", param.ErrUnknownParameter, id)
}

// PitchClassFormatter shows a note index as its pitch-class name.
func PitchClassFormatter(v float64) string {
	i := int(v + 0.5)
	if i < 0 || i >= len(midi.PitchClassNames) {
		return strconv.Itoa(i)
	}
	return midi.PitchClassNames[i]
}

// PitchClassParser accepts a pitch-class name (case-insensitive) or an
// index.
func PitchClassParser(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for i, name := range midi.PitchClassNames {
		if strings.EqualFold(s, name) {
			return float64(i), nil
		}
	}
	return strconv.ParseFloat(s, 64)
}
