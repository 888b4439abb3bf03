package engine

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gruvah/kickbridge/pkg/framework/debug"
)

// Handle exclusively owns at most one Native instance.
//
// Prepare, Release and Close belong to the control context and are
// serialized by a mutex the audio context never touches. SetParameter may be
// called from any goroutine: it writes an atomic slot and raises a dirty
// flag, and the audio context forwards dirty slots to the engine at the start
// of its next Begin. The audio context (Begin and the Process/Submit helpers)
// must be driven by a single goroutine at a time.
type Handle struct {
	factory Factory
	ids     []string
	log     *debug.Logger
	source  ValueSource

	slots []slot
	dirty atomic.Bool

	live     atomic.Pointer[instance]
	inflight atomic.Int32

	mu         sync.Mutex
	sampleRate uint32
}

type slot struct {
	bits  atomic.Uint32
	dirty atomic.Bool
}

type instance struct {
	native Native
}

// ValueSource returns the committed value of the parameter at index. It is
// called from the audio context and must not allocate, lock or block.
type ValueSource func(index int) float64

// NewHandle creates an unprepared handle for the parameters named by ids.
func NewHandle(factory Factory, ids []string, log *debug.Logger) *Handle {
	if log == nil {
		log = debug.Default()
	}
	return &Handle{
		factory: factory,
		ids:     append([]string(nil), ids...),
		log:     log.With("engine"),
		slots:   make([]slot, len(ids)),
	}
}

// SetSource makes the handle read parameter values from src when it
// delivers them, so SetParameter only marks a slot dirty. Concurrent writers
// of one parameter then converge on the last committed value instead of the
// last SetParameter call to land. It must be called before the handle is
// shared.
func (h *Handle) SetSource(src ValueSource) {
	h.source = src
}

// Prepare creates the engine for sampleRate, replacing any live instance.
//
// sync is invoked after creation and before the engine becomes visible to
// the audio context; every SetParameter it issues is delivered to the new
// engine before Prepare returns. On failure the handle stays unprepared.
func (h *Handle) Prepare(sampleRate uint32, sync func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.release()

	if h.factory == nil {
		return &CreationError{SampleRate: sampleRate, Cause: ErrNoFactory}
	}
	if sampleRate == 0 {
		return &CreationError{SampleRate: sampleRate, Cause: errors.New("sample rate must be positive")}
	}

	native, err := h.factory.Create(sampleRate, h.ids)
	if err != nil {
		var ce *CreationError
		if errors.As(err, &ce) {
			return err
		}
		return &CreationError{SampleRate: sampleRate, Cause: err}
	}
	if native == nil {
		return &CreationError{SampleRate: sampleRate, Cause: errors.New("factory returned no engine")}
	}

	published := false
	defer func() {
		if !published {
			native.Destroy()
		}
	}()

	if sync != nil {
		sync()
	}

	// The engine is still private to this goroutine, so the control
	// context may feed it directly.
	h.dirty.Store(false)
	h.flush(native)

	h.live.Store(&instance{native: native})
	published = true
	h.sampleRate = sampleRate

	h.log.Info("engine prepared at %d Hz with %d parameters", sampleRate, len(h.ids))
	return nil
}

// Release destroys the live engine, if any. Callbacks that are already
// running finish first; later callbacks see an unprepared handle.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.release() {
		h.log.Info("engine released")
	}
}

// Close is Release for instance teardown. It always returns nil; the error
// result satisfies io.Closer.
func (h *Handle) Close() error {
	h.Release()
	return nil
}

func (h *Handle) release() bool {
	inst := h.live.Swap(nil)
	if inst == nil {
		return false
	}
	for h.inflight.Load() != 0 {
		runtime.Gosched()
	}
	inst.native.Destroy()
	h.sampleRate = 0
	return true
}

// Prepared reports whether an engine is live.
func (h *Handle) Prepared() bool {
	return h.live.Load() != nil
}

// SampleRate returns the rate of the live engine, or 0.
func (h *Handle) SampleRate() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sampleRate
}

// SetParameter records a new value for the parameter at index. It never
// blocks; the value reaches the engine at the start of the next block. With
// a source set, the value delivered is the one the source holds at that
// point.
func (h *Handle) SetParameter(index int, value float64) {
	if index < 0 || index >= len(h.slots) {
		return
	}
	s := &h.slots[index]
	s.bits.Store(math.Float32bits(float32(value)))
	s.dirty.Store(true)
	h.dirty.Store(true)
}

// Pending returns the last value recorded for index and whether it is still
// waiting to be delivered.
func (h *Handle) Pending(index int) (float32, bool) {
	if index < 0 || index >= len(h.slots) {
		return 0, false
	}
	s := &h.slots[index]
	return math.Float32frombits(s.bits.Load()), s.dirty.Load()
}

func (h *Handle) flush(native Native) {
	for i := range h.slots {
		s := &h.slots[i]
		if !s.dirty.Swap(false) {
			continue
		}
		if h.source != nil {
			s.bits.Store(math.Float32bits(float32(h.source(i))))
		}
		native.UpdateParam(i, math.Float32frombits(s.bits.Load()))
	}
}

// Session is the audio context's view of the engine for one block. It keeps
// the engine alive until End.
type Session struct {
	h      *Handle
	native Native
}

// Begin enters the audio context. It returns false, with nothing to End,
// when the handle is unprepared. Pending parameter values are delivered to
// the engine before Begin returns.
func (h *Handle) Begin() (Session, bool) {
	h.inflight.Add(1)
	inst := h.live.Load()
	if inst == nil {
		h.inflight.Add(-1)
		return Session{}, false
	}

	if h.dirty.Swap(false) {
		h.flush(inst.native)
	}
	return Session{h: h, native: inst.native}, true
}

// End leaves the audio context.
func (s Session) End() {
	if s.h != nil {
		s.h.inflight.Add(-1)
	}
}

// SubmitMidi forwards one note event.
func (s Session) SubmitMidi(msg Message) {
	s.native.ProcessMidi(msg)
}

// ProcessStereo renders min(len(left), len(right)) frames in place.
func (s Session) ProcessStereo(left, right []float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if n == 0 {
		return
	}
	s.native.Process(left[:n], right[:n])
}

// ProcessMono renders len(block) frames in place.
func (s Session) ProcessMono(block []float32) {
	if len(block) == 0 {
		return
	}
	s.native.ProcessMono(block)
}

// ProcessStereo runs one stereo block. It reports false and leaves the
// buffers untouched when the handle is unprepared.
func (h *Handle) ProcessStereo(left, right []float32) bool {
	s, ok := h.Begin()
	if !ok {
		return false
	}
	defer s.End()
	s.ProcessStereo(left, right)
	return true
}

// ProcessMono runs one mono block. It reports false and leaves the buffer
// untouched when the handle is unprepared.
func (h *Handle) ProcessMono(block []float32) bool {
	s, ok := h.Begin()
	if !ok {
		return false
	}
	defer s.End()
	s.ProcessMono(block)
	return true
}

// SubmitMidi forwards one note event. It is a no-op when unprepared.
func (h *Handle) SubmitMidi(msg Message) bool {
	s, ok := h.Begin()
	if !ok {
		return false
	}
	defer s.End()
	s.SubmitMidi(msg)
	return true
}
