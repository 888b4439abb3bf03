package kick

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gruvah/kickbridge/pkg/engine"
	"github.com/gruvah/kickbridge/pkg/framework/debug"
	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/framework/plugin"
	"github.com/gruvah/kickbridge/pkg/framework/process"
	"github.com/gruvah/kickbridge/pkg/midi"
)

// Version of the instrument.
const Version = "1.0.0"

// Info describes the instrument to hosts.
var Info = plugin.Info{
	ID:          "com.gruvah.kick",
	Name:        "Gruvah Kick",
	Version:     Version,
	Vendor:      "Gruvah",
	Category:    "Instrument|Drum",
	AcceptsMIDI: true,
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger for control-context events.
func WithLogger(l *debug.Logger) Option {
	return func(p *Plugin) {
		p.log = l
	}
}

// Plugin is one instrument instance. It owns its engine handle and its
// registry subscription; both end with Close.
type Plugin struct {
	*plugin.Base

	handle *engine.Handle
	labels *Labels
	router *Router
	log    *debug.Logger

	mu          sync.Mutex
	unsubscribe func()
	sampleRate  float64
	maxBlock    int
}

var _ plugin.Processor = (*Plugin)(nil)

// New creates an unprepared instrument whose engines come from factory.
func New(factory engine.Factory, opts ...Option) (*Plugin, error) {
	params, err := NewParameters()
	if err != nil {
		return nil, fmt.Errorf("kick: declaring parameters: %w", err)
	}

	p := &Plugin{
		Base: plugin.NewBase(Info, params),
		log:  debug.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("kick")

	p.handle = engine.NewHandle(factory, IDs(), p.log)
	p.handle.SetSource(params.Value)
	p.labels = NewLabels(params)
	p.router = NewRouter(params, p.handle, p.labels)
	p.unsubscribe = params.Subscribe(p.router)
	return p, nil
}

// Prepare creates the engine for sampleRate and sends it every parameter
// value before the first block. On failure the instrument stays unprepared
// and renders silence.
func (p *Plugin) Prepare(sampleRate float64, maxBlockSize int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rate := uint32(0)
	if sampleRate >= 1 && sampleRate <= math.MaxUint32 {
		rate = uint32(math.Round(sampleRate))
	}
	if err := p.handle.Prepare(rate, p.router.SyncAll); err != nil {
		p.log.Error("prepare at %.0f Hz failed: %v", sampleRate, err)
		return err
	}
	p.sampleRate = sampleRate
	p.maxBlock = maxBlockSize
	return nil
}

// Release destroys the engine. Blocks processed afterwards are silent.
func (p *Plugin) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handle.Release()
	p.sampleRate = 0
}

// Close releases the engine and stops listening to parameter changes.
func (p *Plugin) Close() error {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	return p.handle.Close()
}

// Prepared reports whether an engine is live.
func (p *Plugin) Prepared() bool {
	return p.handle.Prepared()
}

// SampleRate returns the rate passed to the last successful Prepare, or 0.
func (p *Plugin) SampleRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sampleRate
}

// SetLayout negotiates the output channel count.
func (p *Plugin) SetLayout(channels int) error {
	if err := p.Base.SetLayout(channels); err != nil {
		p.log.Warn("rejected layout: %v", err)
		return err
	}
	return nil
}

// Process is the audio callback. Note events of the block reach the engine
// in buffer order before any audio is rendered. One output channel renders
// mono, two render stereo, and any other count leaves the buffers alone.
// Unprepared, mono and stereo outputs are zeroed.
func (p *Plugin) Process(ctx *process.Context) {
	s, ok := p.handle.Begin()
	if !ok {
		if channels := ctx.NumOutputChannels(); channels == 1 || channels == 2 {
			ctx.Clear()
		}
		return
	}
	defer s.End()

	if events := ctx.Events; events != nil {
		for i := 0; i < events.Len(); i++ {
			if msg, ok := midi.Translate(events.At(i)); ok {
				s.SubmitMidi(msg)
			}
		}
	}

	n := ctx.NumSamples()
	switch ctx.NumOutputChannels() {
	case 1:
		s.ProcessMono(ctx.Output[0][:n])
	case 2:
		s.ProcessStereo(ctx.Output[0][:n], ctx.Output[1][:n])
	}
}

// SetParameter commits a value by id, clamped to its range, and returns
// the committed value.
func (p *Plugin) SetParameter(id string, value float64) (float64, error) {
	return p.Parameters().SetByID(id, value)
}

// Set commits a value by key.
func (p *Plugin) Set(key Key, value float64) float64 {
	return p.Parameters().Set(int(key), value)
}

// SetText parses display text (e.g. "A#", "12 ms", "Soft") for id and
// commits it.
func (p *Plugin) SetText(id, text string) (float64, error) {
	prm, err := p.Parameters().Lookup(id)
	if err != nil {
		return 0, err
	}
	v, err := prm.ParseValue(text)
	if err != nil {
		return 0, err
	}
	return p.Parameters().Set(prm.Index, v), nil
}

// Value returns the current value of key.
func (p *Plugin) Value(key Key) float64 {
	return p.Parameters().Value(int(key))
}

// Label returns the derived note label of a 1-based voice slot.
func (p *Plugin) Label(slot int) string {
	return p.labels.Label(slot)
}

// Pitch returns the MIDI note a 1-based voice slot plays, or 0 for an
// unknown slot.
func (p *Plugin) Pitch(slot int) uint8 {
	if slot < 1 || slot > SlotCount {
		return 0
	}
	reg := p.Parameters()
	return midi.PitchFromSlot(reg.Get(int(OctaveKey(slot))).Int(), reg.Get(int(NoteKey(slot))).Int())
}

// Labels returns the labels of all voice slots.
func (p *Plugin) Labels() [SlotCount]string {
	return p.labels.All()
}

// RestoreState commits a saved blob, resynchronizes the engine with every
// parameter and recomputes every label.
func (p *Plugin) RestoreState(blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.LoadState(blob)
	if err != nil {
		p.log.Error("state restore failed: %v", err)
		return err
	}
	p.router.SyncAll()
	p.labels.AfterStateRestore()
	p.log.Info("restored %d parameters", n)
	return nil
}

// Reset returns every parameter to its default as one restore.
func (p *Plugin) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Parameters().Reset()
	p.router.SyncAll()
	p.labels.AfterStateRestore()
}

// IsUnknownParameter reports whether err names an undeclared parameter.
func IsUnknownParameter(err error) bool {
	return errors.Is(err, param.ErrUnknownParameter)
}
