package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gruvah/kickbridge/pkg/api"
	"github.com/gruvah/kickbridge/pkg/host"
)

var listenAddr string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Loop a sequence on the audio device, optionally with the HTTP control surface",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&midiPath, "midi", "", "standard MIDI file to loop (default: a pulse pattern)")
	playCmd.Flags().StringVar(&listenAddr, "listen", "", "serve the HTTP API on this address (overrides the config)")
	addPatternFlags(playCmd)
	addScriptFlag(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
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
	if seq.Loop == 0 {
		seq.Loop = seq.End() + int64(s.cfg.SampleRate)
	}
	hooks, err := loadScript(s)
	if err != nil {
		return err
	}

	addr := s.cfg.HTTP.Listen
	if cmd.Flags().Changed("listen") {
		addr = listenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player := host.NewPlayer(h, seq, s.log, hooks...)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return player.Run(ctx)
	})
	if addr != "" {
		srv := api.NewServer(s.plugin, player.Stats, s.log)
		g.Go(func() error {
			return srv.Run(ctx, addr)
		})
	}
	return g.Wait()
}
