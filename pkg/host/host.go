// Package host runs an instrument the way a plugin host would: fixed-size
// blocks, sample-accurate MIDI per block, offline rendering to WAV and
// real-time playback.
package host

import (
	"fmt"

	"github.com/gruvah/kickbridge/pkg/framework/bus"
	"github.com/gruvah/kickbridge/pkg/framework/plugin"
	"github.com/gruvah/kickbridge/pkg/framework/process"
)

// Config is the stream configuration of a Host.
type Config struct {
	SampleRate float64
	BlockSize  int
	Channels   int
	MaxEvents  int
}

// Host drives one plugin.Processor. All buffers are allocated by New.
type Host struct {
	proc        plugin.Processor
	cfg         Config
	ctx         *process.Context
	interleaved []float32
}

// New negotiates the layout with proc and allocates the block buffers.
func New(proc plugin.Processor, cfg Config) (*Host, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("host: sample rate must be positive, got %v", cfg.SampleRate)
	}
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("host: block size must be positive, got %d", cfg.BlockSize)
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 256
	}
	if err := proc.SetLayout(cfg.Channels); err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	if got := proc.Buses().MainOutputChannels(); got != cfg.Channels {
		return nil, fmt.Errorf("host: %w: processor kept %d channels", bus.ErrUnsupportedLayout, got)
	}

	ctx := process.NewContext(cfg.BlockSize, cfg.Channels, cfg.MaxEvents)
	ctx.SampleRate = cfg.SampleRate
	return &Host{
		proc:        proc,
		cfg:         cfg,
		ctx:         ctx,
		interleaved: make([]float32, cfg.BlockSize*cfg.Channels),
	}, nil
}

// Config returns the stream configuration.
func (h *Host) Config() Config {
	return h.cfg
}

// Processor returns the hosted processor.
func (h *Host) Processor() plugin.Processor {
	return h.proc
}

// Prepare starts the stream.
func (h *Host) Prepare() error {
	return h.proc.Prepare(h.cfg.SampleRate, h.cfg.BlockSize)
}

// Release stops the stream.
func (h *Host) Release() {
	h.proc.Release()
}

// Block renders frames samples starting at timeline frame start and returns
// them interleaved. The slice is reused by the next call. frames is clamped
// to the block size. Block never allocates.
func (h *Host) Block(seq *Sequence, start int64, frames int) []float32 {
	frames = h.ctx.SetFrames(frames)
	h.ctx.Reset()
	if seq != nil {
		seq.Fill(h.ctx.Events, start, frames)
	}
	h.proc.Process(h.ctx)
	n := h.ctx.Interleave(h.interleaved)
	return h.interleaved[:n]
}

// Context exposes the block context, for inspection in tests and meters.
func (h *Host) Context() *process.Context {
	return h.ctx
}
