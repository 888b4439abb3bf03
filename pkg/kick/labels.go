package kick

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gruvah/kickbridge/pkg/framework/debug"
	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/midi"
)

const (
	maxOctave = 10
	maxNote   = 11
)

// labelTable holds every label so publishing one never formats.
var labelTable = func() (t [maxOctave + 1][maxNote + 1]string) {
	for o := range t {
		for n := range t[o] {
			t[o][n] = midi.PitchClassNames[n] + strconv.Itoa(o)
		}
	}
	return t
}()

// NoteLabel returns the pitch-class name of note followed by octave, e.g.
// NoteLabel(4, 9) == "A4". Out-of-range inputs fail an assertion in debug
// builds and are clamped otherwise.
func NoteLabel(octave, note int) string {
	return *labelRef(octave, note)
}

func labelRef(octave, note int) *string {
	debug.Assert(note >= 0 && note <= maxNote, "note index %d out of range", note)
	debug.Assert(octave >= 0 && octave <= maxOctave, "octave %d out of range", octave)
	return &labelTable[clampInt(octave, 0, maxOctave)][clampInt(note, 0, maxNote)]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Labels keeps the derived note label of each voice slot. Labels are read
// lock-free; recomputation is serialized per slot so the last writer always
// publishes the latest (octave, note) pair.
type Labels struct {
	params *param.Registry
	mu     [SlotCount]sync.Mutex
	label  [SlotCount]atomic.Pointer[string]
}

// NewLabels computes the initial labels from params.
func NewLabels(params *param.Registry) *Labels {
	l := &Labels{params: params}
	l.AfterStateRestore()
	return l
}

// Recompute derives the label of a 1-based slot from the current parameter
// values, publishes it and returns it.
func (l *Labels) Recompute(slot int) string {
	if slot < 1 || slot > SlotCount {
		return ""
	}
	l.mu[slot-1].Lock()
	defer l.mu[slot-1].Unlock()

	octave := l.params.Get(int(OctaveKey(slot))).Int()
	note := l.params.Get(int(NoteKey(slot))).Int()
	label := labelRef(octave, note)
	l.label[slot-1].Store(label)
	return *label
}

// AfterStateRestore recomputes every slot unconditionally.
func (l *Labels) AfterStateRestore() {
	for slot := 1; slot <= SlotCount; slot++ {
		l.Recompute(slot)
	}
}

// Label returns the last published label of a 1-based slot.
func (l *Labels) Label(slot int) string {
	if slot < 1 || slot > SlotCount {
		return ""
	}
	if p := l.label[slot-1].Load(); p != nil {
		return *p
	}
	return ""
}

// All returns the labels of slots 1 through 4.
func (l *Labels) All() [SlotCount]string {
	var out [SlotCount]string
	for i := range out {
		out[i] = l.Label(i + 1)
	}
	return out
}
