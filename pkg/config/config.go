// Package config loads the YAML configuration of the kickbridge host.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/gruvah/kickbridge/pkg/framework/bus"
	"github.com/gruvah/kickbridge/pkg/framework/debug"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Engine selects the native engine.
type Engine struct {
	// Backend is "dylib" (load Library at run time), "cgo" (linked in) or
	// "null" (a silent in-process engine).
	Backend string `yaml:"backend"`
	Library string `yaml:"library,omitempty"`
}

// HTTP configures the control surface.
type HTTP struct {
	Listen string `yaml:"listen,omitempty"`
}

// Config is the host configuration.
type Config struct {
	SampleRate float64        `yaml:"sample_rate"`
	BlockSize  int            `yaml:"block_size"`
	Channels   int            `yaml:"channels"`
	MaxEvents  int            `yaml:"max_events"`
	LogLevel   string         `yaml:"log_level"`
	Engine     Engine         `yaml:"engine"`
	HTTP       HTTP           `yaml:"http"`
	Script     string         `yaml:"script,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SampleRate: 44100,
		BlockSize:  512,
		Channels:   2,
		MaxEvents:  256,
		LogLevel:   "INFO",
		Engine:     Engine{Backend: DefaultBackend},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalWithOptions(data, c, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 384000 {
		return fmt.Errorf("%w: sample_rate %v outside 8000..384000", ErrInvalidConfig, c.SampleRate)
	}
	if c.BlockSize < 16 || c.BlockSize > 8192 {
		return fmt.Errorf("%w: block_size %d outside 16..8192", ErrInvalidConfig, c.BlockSize)
	}
	if !bus.SupportsLayout(c.Channels) {
		return fmt.Errorf("%w: channels must be 1 or 2, got %d", ErrInvalidConfig, c.Channels)
	}
	if c.MaxEvents < 1 {
		return fmt.Errorf("%w: max_events must be positive", ErrInvalidConfig)
	}
	if _, err := debug.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	switch c.Engine.Backend {
	case "dylib", "cgo", "null":
	default:
		return fmt.Errorf("%w: engine.backend %q", ErrInvalidConfig, c.Engine.Backend)
	}
	for id, v := range c.Params {
		switch v.(type) {
		case int, int64, uint64, float64, string:
		default:
			return fmt.Errorf("%w: params.%s has unsupported type %T", ErrInvalidConfig, id, v)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() debug.LogLevel {
	level, err := debug.ParseLevel(c.LogLevel)
	if err != nil {
		return debug.LogLevelInfo
	}
	return level
}

// ParamSetter receives initial parameter values.
type ParamSetter interface {
	SetParameter(id string, value float64) (float64, error)
	SetText(id, text string) (float64, error)
}

// Apply commits the params section in id order. Strings are parsed as
// display text, so "A#" works for a note and "Soft" for a choice.
func (c *Config) Apply(s ParamSetter) error {
	ids := make([]string, 0, len(c.Params))
	for id := range c.Params {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var err error
		switch v := c.Params[id].(type) {
		case int:
			_, err = s.SetParameter(id, float64(v))
		case int64:
			_, err = s.SetParameter(id, float64(v))
		case uint64:
			_, err = s.SetParameter(id, float64(v))
		case float64:
			_, err = s.SetParameter(id, v)
		case string:
			_, err = s.SetText(id, v)
		default:
			err = fmt.Errorf("unsupported type %T", v)
		}
		if err != nil {
			return fmt.Errorf("config: params.%s: %w", id, err)
		}
	}
	return nil
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
