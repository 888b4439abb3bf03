package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("kickbridge %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestParams(t *testing.T) {
	out := execute(t, "params", "--backend", "null", "--log-level", "ERROR")
	for _, want := range []string{"octave_1", "saturationType", "slot 1: C8 (midi 108, 4186.01 Hz)", "slot 4: A1 (midi 33, 55.00 Hz)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q", want)
		}
	}
}

func TestRenderPulse(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "pulse.wav")
	execute(t, "render", "--backend", "null", "--log-level", "ERROR",
		"--sample-rate", "44100", "--channels", "2", "--seconds", "0.1", "--out", wav)

	info, err := os.Stat(wav)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(44 + 4410*2*4); info.Size() != want {
		t.Errorf("size = %d, want %d", info.Size(), want)
	}
}

func TestPatternThenRender(t *testing.T) {
	dir := t.TempDir()
	mid := filepath.Join(dir, "p.mid")
	wav := filepath.Join(dir, "p.wav")

	if out := execute(t, "pattern", mid, "--bpm", "140", "--beats", "4"); !strings.Contains(out, "4 x C2 at 140 bpm") {
		t.Errorf("pattern output = %q", out)
	}
	execute(t, "render", "--backend", "null", "--log-level", "ERROR",
		"--sample-rate", "48000", "--channels", "1", "--midi", mid, "--seconds", "0.05", "--out", wav)

	info, err := os.Stat(wav)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(44 + 2400*4); info.Size() != want {
		t.Errorf("size = %d, want %d", info.Size(), want)
	}
}

func TestConfigPrintsYAML(t *testing.T) {
	out := execute(t, "config", "--backend", "null", "--block-size", "256")
	if !strings.Contains(out, "block_size: 256") || !strings.Contains(out, "backend:") {
		t.Errorf("config output:\n%s", out)
	}
}

func TestUnknownBackend(t *testing.T) {
	rootCmd.SetArgs([]string{"params", "--backend", "vst"})
	rootCmd.SetOut(&bytes.Buffer{})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("unknown backend accepted")
	}
}
