package midi

import (
	"math"
	"testing"
)

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		typ   EventType
		bytes []byte
	}{
		{"note on", NoteOn(10, 1, 60, 100), EventTypeNoteOn, []byte{0x91, 60, 100}},
		{"note off", NoteOff(0, 0, 36, 64), EventTypeNoteOff, []byte{0x80, 36, 64}},
		{"control change", ControlChange(5, 15, CCSustain, 127), EventTypeControlChange, []byte{0xBF, 64, 127}},
		{"program change", ProgramChange(0, 2, 9), EventTypeProgramChange, []byte{0xC2, 9}},
		{"pitch bend center", PitchBend(0, 0, 0), EventTypePitchBend, []byte{0xE0, 0x00, 0x40}},
		{"from bytes", FromBytes(3, []byte{0xD0, 12, 0, 0}), EventTypeChannelPressure, []byte{0xD0, 12, 0}},
		{"empty", Event{}, EventTypeUnknown, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			if e.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", e.Type(), tt.typ)
			}
			got := e.Bytes()
			if len(got) != len(tt.bytes) {
				t.Fatalf("Bytes() = % x, want % x", got, tt.bytes)
			}
			for i := range got {
				if got[i] != tt.bytes[i] {
					t.Errorf("Bytes() = % x, want % x", got, tt.bytes)
					break
				}
			}
		})
	}
}

func TestEventChannelMasked(t *testing.T) {
	e := NoteOn(0, 0x1F, 200, 200)
	if e.Channel() != 0x0F {
		t.Errorf("channel = %d, want 15", e.Channel())
	}
	if e.Data[1] > 127 || e.Data[2] > 127 {
		t.Errorf("data bytes not masked: % x", e.Bytes())
	}
}

func TestNoteToFrequency(t *testing.T) {
	tests := []struct {
		note uint8
		want float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6256},
	}
	for _, tt := range tests {
		got := NoteToFrequency(tt.note, 0)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("NoteToFrequency(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
	if got := NoteToFrequency(69, 432); got != 432 {
		t.Errorf("NoteToFrequency(69, 432) = %v", got)
	}
}

func TestNoteNumberToName(t *testing.T) {
	tests := map[uint8]string{0: "C-1", 60: "C4", 69: "A4", 127: "G9"}
	for note, want := range tests {
		if got := NoteNumberToName(note); got != want {
			t.Errorf("NoteNumberToName(%d) = %q, want %q", note, got, want)
		}
	}
}

func TestPitchFromSlot(t *testing.T) {
	tests := []struct {
		octave, note int
		want         uint8
	}{
		{0, 0, 12},
		{4, 9, 69},
		{8, 0, 108},
		{10, 11, 127},
		{-5, 0, 0},
	}
	for _, tt := range tests {
		if got := PitchFromSlot(tt.octave, tt.note); got != tt.want {
			t.Errorf("PitchFromSlot(%d, %d) = %d, want %d", tt.octave, tt.note, got, tt.want)
		}
	}
}
