package kick

import (
	"fmt"
	"sync"
	"testing"
)

func TestNoteLabelAllPairs(t *testing.T) {
	names := [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	for octave := 0; octave <= 10; octave++ {
		for note := 0; note <= 11; note++ {
			want := fmt.Sprintf("%s%d", names[note], octave)
			if got := NoteLabel(octave, note); got != want {
				t.Errorf("NoteLabel(%d, %d) = %q, want %q", octave, note, got, want)
			}
		}
	}
	if got := NoteLabel(4, 9); got != "A4" {
		t.Errorf("NoteLabel(4, 9) = %q, want A4", got)
	}
}

func TestLabelsInitial(t *testing.T) {
	reg, _ := NewParameters()
	labels := NewLabels(reg)

	want := [SlotCount]string{"C8", "G4", "F3", "A1"}
	if got := labels.All(); got != want {
		t.Errorf("initial labels = %v, want %v", got, want)
	}
	if labels.Label(0) != "" || labels.Label(5) != "" {
		t.Error("out-of-range slot returned a label")
	}
	if labels.Recompute(9) != "" {
		t.Error("Recompute of out-of-range slot returned a label")
	}
}

func TestLabelsAfterStateRestore(t *testing.T) {
	reg, _ := NewParameters()
	labels := NewLabels(reg)

	// Store bypasses listeners, like a bulk restore.
	reg.Store(int(Octave2), 6)
	reg.Store(int(Note2), 1)
	reg.Store(int(Octave4), 0)
	if labels.Label(2) != "G4" {
		t.Fatalf("label changed without recompute: %q", labels.Label(2))
	}

	labels.AfterStateRestore()
	if got := labels.Label(2); got != "C#6" {
		t.Errorf("slot 2 = %q, want C#6", got)
	}
	if got := labels.Label(4); got != "A0" {
		t.Errorf("slot 4 = %q, want A0", got)
	}
}

func TestLabelsConcurrentWriters(t *testing.T) {
	reg, _ := NewParameters()
	labels := NewLabels(reg)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if (i+w)%2 == 0 {
					reg.Store(int(Octave1), float64((i+w)%11))
				} else {
					reg.Store(int(Note1), float64((i*w)%12))
				}
				labels.Recompute(1)
			}
		}(w)
	}
	wg.Wait()

	want := NoteLabel(reg.Get(int(Octave1)).Int(), reg.Get(int(Note1)).Int())
	if got := labels.Label(1); got != want {
		t.Errorf("label after concurrent writers = %q, want %q", got, want)
	}
}
