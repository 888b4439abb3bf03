// Package midi holds host-delivered MIDI events for one audio block and
// translates note messages into the engine's representation.
package midi

import (
	"fmt"
	"math"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
	EventTypeSystem
	EventTypeUnknown
)

var eventTypeNames = [...]string{
	"NoteOff", "NoteOn", "PolyPressure", "ControlChange", "ProgramChange",
	"ChannelPressure", "PitchBend", "System", "Unknown",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "Unknown"
}

const (
	CCModWheel    uint8 = 1
	CCVolume      uint8 = 7
	CCPan         uint8 = 10
	CCExpression  uint8 = 11
	CCSustain     uint8 = 64
	CCAllSoundOff uint8 = 120
	CCAllNotesOff uint8 = 123
)

// Event is one host-delivered channel message. It is a fixed-size value so
// blocks of events can be held without allocation.
type Event struct {
	Offset int32   // Sample offset within the block
	Data   [3]byte // Status byte and up to two data bytes
	Size   uint8   // Number of valid bytes in Data
}

func NoteOn(offset int32, channel, note, velocity uint8) Event {
	return Event{Offset: offset, Data: [3]byte{0x90 | channel&0x0F, note & 0x7F, velocity & 0x7F}, Size: 3}
}

func NoteOff(offset int32, channel, note, velocity uint8) Event {
	return Event{Offset: offset, Data: [3]byte{0x80 | channel&0x0F, note & 0x7F, velocity & 0x7F}, Size: 3}
}

func ControlChange(offset int32, channel, controller, value uint8) Event {
	return Event{Offset: offset, Data: [3]byte{0xB0 | channel&0x0F, controller & 0x7F, value & 0x7F}, Size: 3}
}

func ProgramChange(offset int32, channel, program uint8) Event {
	return Event{Offset: offset, Data: [3]byte{0xC0 | channel&0x0F, program & 0x7F}, Size: 2}
}

// PitchBend takes a value in -8192..8191, 0 is center.
func PitchBend(offset int32, channel uint8, value int16) Event {
	v := int(value) + 8192
	if v < 0 {
		v = 0
	} else if v > 16383 {
		v = 16383
	}
	return Event{Offset: offset, Data: [3]byte{0xE0 | channel&0x0F, byte(v & 0x7F), byte(v >> 7)}, Size: 3}
}

// FromBytes builds an event from a raw channel message. Bytes past the third
// are dropped; running status is not supported.
func FromBytes(offset int32, raw []byte) Event {
	e := Event{Offset: offset}
	e.Size = uint8(copy(e.Data[:], raw))
	return e
}

// Bytes returns the valid bytes of the event. The slice aliases e.
func (e *Event) Bytes() []byte {
	return e.Data[:e.Size]
}

// Type classifies the event by its status byte. A note-on with velocity 0 is
// reported as NoteOn; Translate applies the note-off rule.
func (e *Event) Type() EventType {
	if e.Size == 0 {
		return EventTypeUnknown
	}
	switch e.Data[0] & 0xF0 {
	case 0x80:
		return EventTypeNoteOff
	case 0x90:
		return EventTypeNoteOn
	case 0xA0:
		return EventTypePolyPressure
	case 0xB0:
		return EventTypeControlChange
	case 0xC0:
		return EventTypeProgramChange
	case 0xD0:
		return EventTypeChannelPressure
	case 0xE0:
		return EventTypePitchBend
	case 0xF0:
		return EventTypeSystem
	}
	return EventTypeUnknown
}

func (e *Event) Channel() uint8 {
	return e.Data[0] & 0x0F
}

func (e Event) String() string {
	return fmt.Sprintf("%s{ch:%d, data:% x, offset:%d}", e.Type(), e.Channel(), e.Bytes(), e.Offset)
}

// NoteToFrequency converts a MIDI note to Hz for the given A4 tuning
// (440 when zero).
func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * math.Exp2((float64(note)-69.0)/12.0)
}

// PitchClassNames are the twelve pitch classes indexed from C.
var PitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteNumberToName names a MIDI note with octave -1 at note 0.
func NoteNumberToName(note uint8) string {
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", PitchClassNames[note%12], octave)
}

// PitchFromSlot converts a voice slot (octave 0..10, pitch class 0..11) to
// the MIDI note the engine plays, clamped to 0..127.
func PitchFromSlot(octave, note int) uint8 {
	p := octave*12 + note + 12
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return uint8(p)
}
