package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/gruvah/kickbridge/pkg/framework/debug"
)

// Player streams a host to the audio device. Read is called from the
// device callback and renders blocks on demand; everything else is control
// side.
type Player struct {
	host    *Host
	hooks   []BlockHook
	log     *debug.Logger
	monitor *debug.DeadlineMonitor

	seq    atomic.Pointer[Sequence]
	pos    atomic.Int64
	panics atomic.Int64

	// Owned by the device callback.
	block  []byte
	filled int
	offset int

	mu      sync.Mutex // Only for setup/control operations
	ctx     *oto.Context
	out     *oto.Player
	started bool
}

// NewPlayer creates a player for h that loops seq.
func NewPlayer(h *Host, seq *Sequence, log *debug.Logger, hooks ...BlockHook) *Player {
	if log == nil {
		log = debug.Default()
	}
	cfg := h.Config()
	p := &Player{
		host:    h,
		hooks:   hooks,
		log:     log.With("player"),
		monitor: debug.NewDeadlineMonitor(debug.BlockBudget(cfg.BlockSize, cfg.SampleRate)),
		block:   make([]byte, cfg.BlockSize*cfg.Channels*4),
	}
	p.seq.Store(seq)
	return p
}

// SetSequence swaps the pattern. It takes effect at the next block.
func (p *Player) SetSequence(seq *Sequence) {
	p.seq.Store(seq)
}

// Position returns the timeline frame of the next block.
func (p *Player) Position() int64 {
	return p.pos.Load()
}

// Stats returns callback timing statistics.
func (p *Player) Stats() debug.DeadlineStats {
	return p.monitor.Stats()
}

// Panics returns the number of blocks that panicked and were replaced by
// silence.
func (p *Player) Panics() int64 {
	return p.panics.Load()
}

// Read fills buf with little-endian float32 frames.
func (p *Player) Read(buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		if p.offset >= p.filled {
			p.renderBlock()
		}
		c := copy(buf[n:], p.block[p.offset:p.filled])
		p.offset += c
		n += c
	}
	return n, nil
}

func (p *Player) renderBlock() {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			clear(p.block)
			p.filled = len(p.block)
			p.offset = 0
		}
		p.monitor.Since(start)
	}()

	frames := p.host.Config().BlockSize
	pos := p.pos.Load()
	seq := p.seq.Load()
	out := p.host.Block(seq, pos, frames)

	next := pos + int64(frames)
	if seq != nil && seq.Loop > 0 {
		next %= seq.Loop
	}
	p.pos.Store(next)

	for i, s := range out {
		binary.LittleEndian.PutUint32(p.block[i*4:], math.Float32bits(s))
	}
	p.filled = len(out) * 4
	p.offset = 0
}

// Start prepares the processor and starts the device stream.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	if err := p.host.Prepare(); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	if p.ctx == nil {
		cfg := p.host.Config()
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(cfg.SampleRate),
			ChannelCount: cfg.Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   2 * debug.BlockBudget(cfg.BlockSize, cfg.SampleRate),
		})
		if err != nil {
			p.host.Release()
			return fmt.Errorf("player: open audio device: %w", err)
		}
		<-ready
		p.ctx = ctx
	}

	p.out = p.ctx.NewPlayer(p)
	p.out.Play()
	p.started = true
	p.log.Info("playing at %.0f Hz, %d frames per block", p.host.Config().SampleRate, p.host.Config().BlockSize)
	return nil
}

// Stop halts the stream and releases the processor.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false
	p.out.Pause()
	err := p.out.Close()
	p.out = nil
	p.host.Release()
	p.log.Info("stopped: %s", p.monitor.Stats())
	return err
}

// Run plays until ctx is done, calling the hooks about once per block with
// the current playback position.
func (p *Player) Run(ctx context.Context) error {
	if err := p.Start(); err != nil {
		return err
	}

	cfg := p.host.Config()
	tick := time.NewTicker(max(debug.BlockBudget(cfg.BlockSize, cfg.SampleRate), time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			err := p.Stop()
			if errors.Is(ctx.Err(), context.Canceled) {
				return err
			}
			return errors.Join(ctx.Err(), err)
		case <-tick.C:
			pos := p.pos.Load()
			for _, hook := range p.hooks {
				if err := hook.OnBlock(pos, float64(pos)/cfg.SampleRate); err != nil {
					return errors.Join(fmt.Errorf("player: %w", err), p.Stop())
				}
			}
		}
	}
}
