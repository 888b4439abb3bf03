package process

import (
	"testing"

	"github.com/gruvah/kickbridge/pkg/midi"
)

func TestContextFrames(t *testing.T) {
	ctx := NewContext(256, 2, 16)

	if ctx.NumOutputChannels() != 2 {
		t.Fatalf("channels = %d", ctx.NumOutputChannels())
	}
	if ctx.NumSamples() != 256 {
		t.Errorf("NumSamples() = %d, want 256", ctx.NumSamples())
	}

	if n := ctx.SetFrames(64); n != 64 || ctx.NumSamples() != 64 {
		t.Errorf("SetFrames(64) = %d, NumSamples %d", n, ctx.NumSamples())
	}
	if n := ctx.SetFrames(1000); n != 256 {
		t.Errorf("SetFrames(1000) = %d, want 256", n)
	}
	if n := ctx.SetFrames(-1); n != 0 || ctx.NumSamples() != 0 {
		t.Errorf("SetFrames(-1) = %d", n)
	}
}

func TestContextShortestChannel(t *testing.T) {
	ctx := &Context{Output: [][]float32{make([]float32, 10), make([]float32, 4)}}
	if ctx.NumSamples() != 4 {
		t.Errorf("NumSamples() = %d, want 4", ctx.NumSamples())
	}
}

func TestContextClearAndReset(t *testing.T) {
	ctx := NewContext(8, 1, 4)
	for i := range ctx.Output[0] {
		ctx.Output[0][i] = 1
	}
	ctx.Events.Add(midi.NoteOn(0, 0, 60, 100))

	ctx.Clear()
	ctx.Reset()

	for i, s := range ctx.Output[0] {
		if s != 0 {
			t.Fatalf("sample %d = %v after Clear", i, s)
		}
	}
	if ctx.Events.Len() != 0 {
		t.Errorf("events = %d after Reset", ctx.Events.Len())
	}
}

func TestInterleave(t *testing.T) {
	ctx := NewContext(3, 2, 1)
	copy(ctx.Output[0], []float32{1, 2, 3})
	copy(ctx.Output[1], []float32{-1, -2, -3})

	dst := make([]float32, 6)
	if n := ctx.Interleave(dst); n != 6 {
		t.Fatalf("Interleave wrote %d samples", n)
	}
	want := []float32{1, -1, 2, -2, 3, -3}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}

	short := make([]float32, 3)
	if n := ctx.Interleave(short); n != 2 {
		t.Errorf("short Interleave wrote %d samples, want 2", n)
	}
}
