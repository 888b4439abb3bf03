package automation

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gruvah/kickbridge/pkg/engine/enginetest"
	"github.com/gruvah/kickbridge/pkg/framework/debug"
	"github.com/gruvah/kickbridge/pkg/host"
	"github.com/gruvah/kickbridge/pkg/kick"
)

var quiet = debug.New(io.Discard, "test", 0)

func newPlugin(t *testing.T) *kick.Plugin {
	t.Helper()
	p, err := kick.New(enginetest.NewRecorder(0), kick.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestScriptSetsParametersAndReadsLabels(t *testing.T) {
	p := newPlugin(t)
	s := New(p, quiet)
	defer s.Close()

	err := s.Run("init", `
		kick.set("octave_1", 8)
		kick.set_text("note_1", "B")
		assert(kick.label(1) == "B8", kick.label(1))
		assert(kick.get("octave_1") == 8)
		assert(kick.text("waveType") == "Sine")
		clamped = kick.set("driveDb", 99)
	`)
	if err != nil {
		t.Fatal(err)
	}
	if p.Label(1) != "B8" {
		t.Errorf("label = %q", p.Label(1))
	}
	if got := p.Value(kick.Drive); got != 24 {
		t.Errorf("drive = %v, want clamped 24", got)
	}
	if s.HasHook() {
		t.Error("script without on_block reports a hook")
	}
}

func TestOnBlock(t *testing.T) {
	p := newPlugin(t)
	s := New(p, quiet)
	defer s.Close()

	if err := s.Run("sweep", `
		function on_block(frame, seconds)
			kick.set("octave_2", math.floor(frame / 100) % 11)
		end
	`); err != nil {
		t.Fatal(err)
	}
	if !s.HasHook() {
		t.Fatal("on_block not found")
	}
	for _, frame := range []int64{0, 300, 1000} {
		if err := s.OnBlock(frame, float64(frame)/48000); err != nil {
			t.Fatal(err)
		}
	}
	if got := p.Value(kick.Octave2); got != 10 {
		t.Errorf("octave_2 = %v, want 10", got)
	}
}

func TestScriptErrors(t *testing.T) {
	p := newPlugin(t)
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `function (`},
		{"unknown parameter", `kick.set("nope", 1)`},
		{"bad text", `kick.set_text("note_1", "H")`},
		{"bad slot", `kick.label(5)`},
		{"sandboxed", `os.exit(1)`},
		{"no loader", `dofile("x.lua")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(p, quiet)
			defer s.Close()
			if err := s.Run(tt.name, tt.src); !errors.Is(err, ErrScript) {
				t.Fatalf("err = %v, want ErrScript", err)
			}
		})
	}
}

func TestHookErrorIsReported(t *testing.T) {
	s := New(newPlugin(t), quiet)
	defer s.Close()
	if err := s.Run("fail", `function on_block(frame) error("stop at " .. frame) end`); err != nil {
		t.Fatal(err)
	}
	if err := s.OnBlock(64, 0); !errors.Is(err, ErrScript) {
		t.Fatalf("err = %v", err)
	}
}

func TestTimeout(t *testing.T) {
	s := New(newPlugin(t), quiet)
	defer s.Close()
	s.Timeout = 20 * time.Millisecond
	if err := s.Run("spin", `function on_block() while true do end end`); err != nil {
		t.Fatal(err)
	}
	if err := s.OnBlock(0, 0); err == nil {
		t.Fatal("runaway hook was not stopped")
	}
}

func TestLoadDrivesRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.lua")
	src := `
		function on_block(frame, seconds)
			if frame >= 128 then kick.set("note_4", 0) end
		end
	`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newPlugin(t)
	s, err := Load(p, path, quiet)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	h, err := host.New(p, host.Config{SampleRate: 48000, BlockSize: 64, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	var sink discard
	if err := host.NewRenderer(h, quiet, s).Render(context.Background(), nil, 256, sink); err != nil {
		t.Fatal(err)
	}
	if got := p.Label(4); got != "C1" {
		t.Errorf("slot 4 label = %q, want C1", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(newPlugin(t), filepath.Join(t.TempDir(), "missing.lua"), quiet); err == nil {
		t.Fatal("expected error")
	}
}

type discard struct{}

func (discard) WriteFrames([]float32) error { return nil }
