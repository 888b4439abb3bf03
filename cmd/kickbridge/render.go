package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/gruvah/kickbridge/pkg/automation"
	"github.com/gruvah/kickbridge/pkg/host"
)

var (
	midiPath   string
	outPath    string
	scriptPath string
	seconds    float64
	bpm        float64
	beats      int
	pitch      uint8
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a MIDI file or a four-on-the-floor pulse to a WAV file",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&midiPath, "midi", "", "standard MIDI file to render (default: a pulse pattern)")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "kick.wav", "output WAV file")
	renderCmd.Flags().Float64Var(&seconds, "seconds", 0, "length to render (default: whole sequence plus one second)")
	addPatternFlags(renderCmd)
	addScriptFlag(renderCmd)
}

func addPatternFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&bpm, "bpm", 120, "tempo of the pulse pattern")
	cmd.Flags().IntVar(&beats, "beats", 4, "hits per bar of the pulse pattern")
	cmd.Flags().Uint8Var(&pitch, "note", 36, "MIDI note of the pulse pattern")
}

func addScriptFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scriptPath, "script", "", "Lua automation script (overrides the config)")
}

// loadSequence reads --midi or builds the pulse pattern.
func loadSequence(rate float64) (*host.Sequence, error) {
	if midiPath != "" {
		return host.LoadSMF(midiPath, rate)
	}
	if bpm <= 0 || beats <= 0 {
		return nil, fmt.Errorf("--bpm and --beats must be positive")
	}
	return host.Pulse(rate, bpm, beats, pitch, 127), nil
}

// loadScript returns the automation hooks for s, if a script is configured.
func loadScript(s *session) ([]host.BlockHook, error) {
	path := s.cfg.Script
	if scriptPath != "" {
		path = scriptPath
	}
	if path == "" {
		return nil, nil
	}
	script, err := automation.Load(s.plugin, path, s.log)
	if err != nil {
		return nil, err
	}
	s.closers = append([]func() error{func() error { script.Close(); return nil }}, s.closers...)
	return []host.BlockHook{script}, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	h, err := host.New(s.plugin, hostConfig(s))
	if err != nil {
		return err
	}
	seq, err := loadSequence(s.cfg.SampleRate)
	if err != nil {
		return err
	}
	hooks, err := loadScript(s)
	if err != nil {
		return err
	}

	frames := int64(math.Round(seconds * s.cfg.SampleRate))
	if frames <= 0 {
		frames = seq.End() + int64(s.cfg.SampleRate)
		if midiPath == "" {
			frames = seq.Loop * 2
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := host.NewWAVWriter(f, int(s.cfg.SampleRate), s.cfg.Channels)
	if err != nil {
		return err
	}
	r := host.NewRenderer(h, s.log, hooks...)
	mw := host.NewMeterWriter(w)
	if err := r.Render(cmd.Context(), seq, frames, mw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %s: %d frames, %.2f s\n", outPath, w.Frames(), float64(w.Frames())/s.cfg.SampleRate)
	fmt.Fprintf(out, "level: %s\n", mw.Meter.Result())
	fmt.Fprintf(out, "timing: %s\n", r.Stats())
	return f.Close()
}

func hostConfig(s *session) host.Config {
	return host.Config{
		SampleRate: s.cfg.SampleRate,
		BlockSize:  s.cfg.BlockSize,
		Channels:   s.cfg.Channels,
		MaxEvents:  s.cfg.MaxEvents,
	}
}
