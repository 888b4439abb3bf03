// Command kickbridge hosts the kick engine outside a DAW: offline rendering,
// real-time playback with an HTTP control surface, and a terminal editor.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gruvah/kickbridge/pkg/config"
	"github.com/gruvah/kickbridge/pkg/framework/debug"
	"github.com/gruvah/kickbridge/pkg/kick"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	logLevel   string
	backend    string
	library    string
	sampleRate float64
	blockSize  int
	channels   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kickbridge",
	Short: "Host the gruvah kick engine",
	Long: `kickbridge drives the gruvah kick synthesizer through its C ABI the way a
plugin host does: fixed-size audio blocks, sample-accurate MIDI and
lock-free parameter automation.

Examples:
  kickbridge render --midi groove.mid --out kick.wav
  kickbridge render --bpm 128 --seconds 8 --script sweep.lua --out sweep.wav
  kickbridge play --listen :8080
  kickbridge params
  kickbridge tui --save preset.bin`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	pf.StringVar(&backend, "backend", "", "engine backend (dylib, cgo, null)")
	pf.StringVar(&library, "engine-lib", "", "path to the engine shared library")
	pf.Float64Var(&sampleRate, "sample-rate", 0, "sample rate in Hz")
	pf.IntVar(&blockSize, "block-size", 0, "frames per audio block")
	pf.IntVar(&channels, "channels", 0, "output channels (1 or 2)")

	rootCmd.AddCommand(renderCmd, playCmd, paramsCmd, tuiCmd, configCmd, patternCmd)
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("backend") {
		cfg.Engine.Backend = backend
	}
	if flags.Changed("engine-lib") {
		cfg.Engine.Library = library
	}
	if flags.Changed("sample-rate") {
		cfg.SampleRate = sampleRate
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = blockSize
	}
	if flags.Changed("channels") {
		cfg.Channels = channels
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.SetLevel(cfg.Level())
	return cfg, nil
}

// session is a plugin instance built from a config, plus whatever must be
// closed with it.
type session struct {
	cfg     *config.Config
	plugin  *kick.Plugin
	closers []func() error
	log     *debug.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := debug.Default()

	factory, closeFactory, err := openFactory(cfg.Engine)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, closers: []func() error{closeFactory}}

	p, err := kick.New(factory, kick.WithLogger(log))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append([]func() error{p.Close}, s.closers...)
	s.plugin = p

	if err := cfg.Apply(p); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
