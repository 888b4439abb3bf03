package host

import (
	"context"
	"fmt"
	"time"

	"github.com/gruvah/kickbridge/pkg/framework/debug"
)

// BlockHook runs on the control side before each block is rendered.
// frame is the timeline position of the block, seconds the same in time.
type BlockHook interface {
	OnBlock(frame int64, seconds float64) error
}

// BlockHookFunc adapts a function to BlockHook.
type BlockHookFunc func(frame int64, seconds float64) error

func (f BlockHookFunc) OnBlock(frame int64, seconds float64) error {
	return f(frame, seconds)
}

// Renderer renders a sequence offline, block by block.
type Renderer struct {
	host    *Host
	hooks   []BlockHook
	log     *debug.Logger
	monitor *debug.DeadlineMonitor
}

// NewRenderer creates a renderer for h. Hooks run in order before every
// block.
func NewRenderer(h *Host, log *debug.Logger, hooks ...BlockHook) *Renderer {
	if log == nil {
		log = debug.Default()
	}
	cfg := h.Config()
	return &Renderer{
		host:    h,
		hooks:   hooks,
		log:     log.With("render"),
		monitor: debug.NewDeadlineMonitor(debug.BlockBudget(cfg.BlockSize, cfg.SampleRate)),
	}
}

// Stats reports how long blocks took relative to real time.
func (r *Renderer) Stats() debug.DeadlineStats {
	return r.monitor.Stats()
}

// Render prepares the processor, renders frames samples of seq into w and
// releases the processor again. It stops early when ctx is cancelled.
func (r *Renderer) Render(ctx context.Context, seq *Sequence, frames int64, w FrameWriter) error {
	if err := r.host.Prepare(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer r.host.Release()

	cfg := r.host.Config()
	r.log.Info("rendering %d frames at %.0f Hz in blocks of %d", frames, cfg.SampleRate, cfg.BlockSize)

	for pos := int64(0); pos < frames; {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, hook := range r.hooks {
			if err := hook.OnBlock(pos, float64(pos)/cfg.SampleRate); err != nil {
				return fmt.Errorf("render: block at frame %d: %w", pos, err)
			}
		}

		n := int(min(int64(cfg.BlockSize), frames-pos))
		start := time.Now()
		out := r.host.Block(seq, pos, n)
		r.monitor.Since(start)

		if err := w.WriteFrames(out); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		pos += int64(n)
	}

	r.log.Debug("render finished: %s", r.monitor.Stats())
	return nil
}

// MeterWriter passes frames through to W while accumulating level
// statistics.
type MeterWriter struct {
	W     FrameWriter
	Meter *debug.Meter
}

// NewMeterWriter wraps w.
func NewMeterWriter(w FrameWriter) *MeterWriter {
	return &MeterWriter{W: w, Meter: debug.NewMeter()}
}

func (m *MeterWriter) WriteFrames(samples []float32) error {
	m.Meter.Add(samples)
	return m.W.WriteFrames(samples)
}
