package host

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"testing"

	"github.com/gruvah/kickbridge/pkg/engine/enginetest"
	"github.com/gruvah/kickbridge/pkg/framework/debug"
	"github.com/gruvah/kickbridge/pkg/framework/process"
	"github.com/gruvah/kickbridge/pkg/kick"
	"github.com/gruvah/kickbridge/pkg/midi"
)

var quiet = debug.New(io.Discard, "test", 0)

func newHost(t *testing.T, rec *enginetest.Recorder, channels, block int) *Host {
	t.Helper()
	p, err := kick.New(rec, kick.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	h, err := New(p, Config{SampleRate: 48000, BlockSize: block, Channels: channels, MaxEvents: 32})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestSequenceFill(t *testing.T) {
	var s Sequence
	s.Add(10, midi.NoteOn(0, 0, 36, 100))
	s.Add(70, midi.NoteOff(0, 0, 36, 0))
	s.Add(10, midi.NoteOn(0, 1, 38, 90))

	buf := midi.NewBuffer(8)
	s.Fill(buf, 0, 64)
	if buf.Len() != 2 {
		t.Fatalf("first block holds %d events, want 2", buf.Len())
	}
	if buf.At(0).Data[1] != 36 || buf.At(1).Data[1] != 38 {
		t.Error("events at the same frame lost insertion order")
	}
	if buf.At(0).Offset != 10 {
		t.Errorf("offset = %d, want 10", buf.At(0).Offset)
	}

	buf.Reset()
	s.Fill(buf, 64, 64)
	if buf.Len() != 1 || buf.At(0).Offset != 6 {
		t.Fatalf("second block: %d events, first offset %d", buf.Len(), buf.At(0).Offset)
	}
}

func TestSequenceLoopWraps(t *testing.T) {
	s := &Sequence{Loop: 100}
	s.Add(0, midi.NoteOn(0, 0, 36, 100))
	s.Add(50, midi.NoteOff(0, 0, 36, 0))

	buf := midi.NewBuffer(8)
	s.Fill(buf, 80, 80)
	if buf.Len() != 2 {
		t.Fatalf("wrapped block holds %d events, want 2", buf.Len())
	}
	if got := buf.At(0).Offset; got != 20 {
		t.Errorf("loop start offset = %d, want 20", got)
	}
	if got := buf.At(1).Offset; got != 70 {
		t.Errorf("second pass offset = %d, want 70", got)
	}
}

func TestPulse(t *testing.T) {
	s := Pulse(44100, 120, 4, 36, 127)
	if s.Loop != 4*22050 {
		t.Fatalf("loop = %d", s.Loop)
	}
	if s.Len() != 8 {
		t.Fatalf("len = %d, want 8", s.Len())
	}
	ev := s.Events()
	if ev[2].Frame != 22050 || ev[2].Event.Type() != midi.EventTypeNoteOn {
		t.Errorf("second hit = %+v", ev[2])
	}
}

func TestSMFRoundTrip(t *testing.T) {
	src := Pulse(44100, 120, 4, 36, 100)

	var buf bytes.Buffer
	if err := src.WriteSMF(&buf, 44100, 120); err != nil {
		t.Fatal(err)
	}
	got, err := ReadSMF(&buf, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != src.Len() {
		t.Fatalf("read %d events, wrote %d", got.Len(), src.Len())
	}
	for i, want := range src.Events() {
		g := got.Events()[i]
		if g.Frame != want.Frame {
			t.Errorf("event %d at frame %d, want %d", i, g.Frame, want.Frame)
		}
		if g.Event.Type() != want.Event.Type() || g.Event.Data[1] != want.Event.Data[1] {
			t.Errorf("event %d = %v, want %v", i, g.Event, want.Event)
		}
	}
}

func TestReadSMFRejectsGarbage(t *testing.T) {
	if _, err := ReadSMF(bytes.NewReader([]byte("not midi")), 44100); err == nil {
		t.Fatal("expected error")
	}
}

func TestHostRejectsUnsupportedLayout(t *testing.T) {
	p, err := kick.New(enginetest.NewRecorder(0), kick.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if _, err := New(p, Config{SampleRate: 48000, BlockSize: 64, Channels: 6}); err == nil {
		t.Fatal("six channels accepted")
	}
	if _, err := New(p, Config{SampleRate: 0, BlockSize: 64, Channels: 2}); err == nil {
		t.Fatal("zero sample rate accepted")
	}
}

func TestHostBlockInterleaves(t *testing.T) {
	rec := enginetest.NewRecorder(0.25)
	h := newHost(t, rec, 2, 64)
	if err := h.Prepare(); err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	var s Sequence
	s.Add(3, midi.NoteOn(0, 0, 36, 100))

	out := h.Block(&s, 0, 64)
	if len(out) != 128 {
		t.Fatalf("got %d samples, want 128", len(out))
	}
	for i, v := range out {
		if v != 0.25 {
			t.Fatalf("sample %d = %v", i, v)
		}
	}
	notes := rec.CallsOf(enginetest.CallMidi)
	if len(notes) != 1 || notes[0].Message.Pitch != 36 {
		t.Fatalf("engine saw %+v", notes)
	}
}

type collect struct{ samples []float32 }

func (c *collect) WriteFrames(s []float32) error {
	c.samples = append(c.samples, s...)
	return nil
}

func TestRenderCallsHooksPerBlock(t *testing.T) {
	rec := enginetest.NewRecorder(0.5)
	h := newHost(t, rec, 1, 100)

	var frames []int64
	hook := BlockHookFunc(func(frame int64, _ float64) error {
		frames = append(frames, frame)
		return nil
	})
	var out collect
	mw := NewMeterWriter(&out)
	if err := NewRenderer(h, quiet, hook).Render(context.Background(), Pulse(48000, 120, 4, 36, 100), 250, mw); err != nil {
		t.Fatal(err)
	}
	if r := mw.Meter.Result(); r.Peak != 0.5 || r.Samples != 250 {
		t.Errorf("meter = %s", r)
	}

	if len(out.samples) != 250 {
		t.Fatalf("rendered %d samples, want 250", len(out.samples))
	}
	want := []int64{0, 100, 200}
	if len(frames) != len(want) {
		t.Fatalf("hook frames = %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("hook frames = %v, want %v", frames, want)
		}
	}
	if rec.Live() != 0 {
		t.Error("engine still alive after render")
	}
}

func TestRenderStopsOnHookError(t *testing.T) {
	h := newHost(t, enginetest.NewRecorder(0), 2, 64)
	boom := errors.New("boom")
	hook := BlockHookFunc(func(frame int64, _ float64) error {
		if frame > 0 {
			return boom
		}
		return nil
	})
	err := NewRenderer(h, quiet, hook).Render(context.Background(), nil, 1000, &collect{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRenderCancelled(t *testing.T) {
	h := newHost(t, enginetest.NewRecorder(0), 2, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRenderer(h, quiet).Render(ctx, nil, 1000, &collect{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestWAVWriter(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "*.wav")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	h := newHost(t, enginetest.NewRecorder(0.5), 2, 64)
	w, err := NewWAVWriter(f, 48000, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewRenderer(h, quiet).Render(context.Background(), nil, 100, w); err != nil {
		t.Fatal(err)
	}
	if w.Frames() != 100 {
		t.Errorf("frames = %d", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != wavHeaderSize+100*2*4 {
		t.Fatalf("file is %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("bad magic")
	}
	if got := binary.LittleEndian.Uint16(data[20:]); got != 3 {
		t.Errorf("format = %d, want IEEE float", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != 800 {
		t.Errorf("data size = %d", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[wavHeaderSize:])); got != 0.5 {
		t.Errorf("first sample = %v", got)
	}
	if err := w.WriteFrames([]float32{0}); err == nil {
		t.Error("write after close succeeded")
	}
}

func TestPlayerRead(t *testing.T) {
	h := newHost(t, enginetest.NewRecorder(0.75), 2, 32)
	if err := h.Prepare(); err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	p := NewPlayer(h, Pulse(48000, 120, 4, 36, 100), quiet)
	buf := make([]byte, 1000) // not a whole number of blocks
	for i := 0; i < 3; i++ {
		n, err := p.Read(buf)
		if err != nil || n != len(buf) {
			t.Fatalf("Read = %d, %v", n, err)
		}
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf)); got != 0.75 {
		t.Errorf("sample = %v", got)
	}
	// 3000 bytes of stereo float32 is 375 frames, rendered in 32-frame blocks.
	if got := p.Position(); got != 384 {
		t.Errorf("position = %d, want 384", got)
	}
	if p.Stats().Callbacks != 12 {
		t.Errorf("blocks = %d, want 12", p.Stats().Callbacks)
	}
}

type panicky struct{ *kick.Plugin }

func (panicky) Process(*process.Context) { panic("engine fault") }

func TestPlayerRecoversFromPanic(t *testing.T) {
	kp, err := kick.New(enginetest.NewRecorder(1), kick.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	defer kp.Close()
	h, err := New(panicky{kp}, Config{SampleRate: 48000, BlockSize: 16, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}

	p := NewPlayer(h, nil, quiet)
	buf := bytes.Repeat([]byte{0xFF}, 128)
	if n, err := p.Read(buf); err != nil || n != len(buf) {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if !debug.AllZero(bytesToFloats(buf)) {
		t.Error("panicking block was not silenced")
	}
	if p.Panics() != 2 {
		t.Errorf("panics = %d, want 2", p.Panics())
	}
}

func bytesToFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
