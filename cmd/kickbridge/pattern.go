package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gruvah/kickbridge/pkg/host"
	"github.com/gruvah/kickbridge/pkg/midi"
)

var patternCmd = &cobra.Command{
	Use:   "pattern <out.mid>",
	Short: "Write a one-bar pulse pattern as a standard MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPattern,
}

func init() {
	addPatternFlags(patternCmd)
}

func runPattern(cmd *cobra.Command, args []string) error {
	if bpm <= 0 || beats <= 0 {
		return fmt.Errorf("--bpm and --beats must be positive")
	}
	// Any rate works: frames are converted straight back to ticks.
	const rate = 48000
	seq := host.Pulse(rate, bpm, beats, pitch, 127)

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := seq.WriteSMF(f, rate, bpm); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d x %s at %g bpm\n", args[0], beats, midi.NoteNumberToName(pitch), bpm)
	return nil
}
