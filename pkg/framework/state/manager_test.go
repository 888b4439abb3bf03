package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gruvah/kickbridge/pkg/framework/param"
)

func newRegistry(t *testing.T) *param.Registry {
	t.Helper()
	r, err := param.NewRegistry(
		param.Int("octave_1", "Octave 1", 0, 10, 8).Build(),
		param.New("timing_1", "Timing 1").Range(0, 10).Default(2.5).Build(),
		param.Choice("waveType", "Wave Type", "Sine", "909").Build(),
	)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src := newRegistry(t)
	src.Set(0, 3)
	src.Set(1, 7.125)
	src.Set(2, 1)

	blob, err := NewManager(src).Bytes()
	if err != nil {
		t.Fatal(err)
	}

	dst := newRegistry(t)
	n, err := NewManager(dst).Restore(blob)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n != 3 {
		t.Errorf("restored %d parameters, want 3", n)
	}
	for i := 0; i < src.Count(); i++ {
		if got, want := dst.Value(i), src.Value(i); got != want {
			t.Errorf("parameter %s = %v, want %v", src.Get(i).ID, got, want)
		}
	}
}

func TestLoadDoesNotNotify(t *testing.T) {
	src := newRegistry(t)
	blob, _ := NewManager(src).Bytes()

	dst := newRegistry(t)
	calls := 0
	dst.Subscribe(param.ListenerFunc(func(*param.Parameter, float64) { calls++ }))
	if _, err := NewManager(dst).Restore(blob); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("Load notified listeners %d times", calls)
	}
}

func TestLoadClampsAndSkipsUnknown(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	binary.Write(&buf, binary.LittleEndian, Version)
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	writeEntry(&buf, "octave_1", 99)
	writeEntry(&buf, "removed_param", 1)

	r := newRegistry(t)
	n, err := NewManager(r).Restore(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("restored %d, want 1", n)
	}
	if r.Value(0) != 10 {
		t.Errorf("octave_1 = %v, want clamped 10", r.Value(0))
	}
	if r.Value(1) != 2.5 {
		t.Errorf("timing_1 = %v, want untouched default 2.5", r.Value(1))
	}
}

func TestLoadCountsRepeatedIDOnce(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	binary.Write(&buf, binary.LittleEndian, Version)
	binary.Write(&buf, binary.LittleEndian, uint32(3))
	writeEntry(&buf, "timing_1", 4)
	writeEntry(&buf, "octave_1", 2)
	writeEntry(&buf, "timing_1", 6)

	r := newRegistry(t)
	n, err := NewManager(r).Restore(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("restored %d, want 2", n)
	}
	if r.Value(1) != 6 {
		t.Errorf("timing_1 = %v, want last entry 6", r.Value(1))
	}
	if r.Value(0) != 2 {
		t.Errorf("octave_1 = %v, want 2", r.Value(0))
	}
}

func TestLoadErrors(t *testing.T) {
	good, _ := NewManager(newRegistry(t)).Bytes()

	newer := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(newer[len(magic):], Version+1)

	tests := []struct {
		name string
		blob []byte
		want error
	}{
		{"empty", nil, ErrInvalidState},
		{"bad magic", []byte("VST3GO\x01\x00\x00\x00"), ErrInvalidState},
		{"truncated", good[:len(good)-3], ErrInvalidState},
		{"too new", newer, ErrVersionTooNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t)
			r.Set(0, 5)
			_, err := NewManager(r).Restore(tt.blob)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if r.Value(0) != 5 {
				t.Errorf("failed load modified octave_1 to %v", r.Value(0))
			}
		})
	}
}

func writeEntry(buf *bytes.Buffer, id string, value float64) {
	binary.Write(buf, binary.LittleEndian, uint16(len(id)))
	buf.WriteString(id)
	binary.Write(buf, binary.LittleEndian, value)
}
