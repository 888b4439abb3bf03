// Package enginetest provides in-process engines for tests and for running
// the bridge without the native library.
package enginetest

import (
	"errors"
	"sync"

	"github.com/gruvah/kickbridge/pkg/engine"
)

// ErrCreate is returned by a Recorder configured with FailCreate.
var ErrCreate = errors.New("enginetest: creation refused")

// CallKind identifies a recorded engine call.
type CallKind int

const (
	CallCreate CallKind = iota
	CallUpdateParam
	CallMidi
	CallProcess
	CallProcessMono
	CallDestroy
)

var callNames = [...]string{"Create", "UpdateParam", "Midi", "Process", "ProcessMono", "Destroy"}

func (k CallKind) String() string {
	if int(k) < len(callNames) {
		return callNames[k]
	}
	return "Unknown"
}

// Call is one recorded engine call.
type Call struct {
	Kind     CallKind
	Instance int
	Index    int
	ID       string
	Value    float32
	Message  engine.Message
	Frames   int
}

// Recorder is a Factory whose engines log every call. Recording takes a
// mutex, so it is only suitable where real-time behavior is not measured.
type Recorder struct {
	// FailCreate makes Create return ErrCreate.
	FailCreate bool
	// Fill is written to every rendered sample.
	Fill float32

	mu        sync.Mutex
	calls     []Call
	ids       []string
	created   int
	destroyed int
}

// NewRecorder returns a recorder that renders fill.
func NewRecorder(fill float32) *Recorder {
	return &Recorder{Fill: fill}
}

// Create implements engine.Factory.
func (r *Recorder) Create(sampleRate uint32, ids []string) (engine.Native, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate {
		return nil, ErrCreate
	}
	r.created++
	r.ids = append(r.ids[:0], ids...)
	n := &recorded{r: r, instance: r.created}
	r.calls = append(r.calls, Call{Kind: CallCreate, Instance: n.instance, Value: float32(sampleRate)})
	return n, nil
}

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsOf returns the recorded calls of one kind.
func (r *Recorder) CallsOf(kind CallKind) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps instance counters.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = r.calls[:0]
	r.mu.Unlock()
}

// Created returns the number of engines created.
func (r *Recorder) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// Destroyed returns the number of engines destroyed.
func (r *Recorder) Destroyed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// Live returns Created minus Destroyed.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created - r.destroyed
}

type recorded struct {
	r        *Recorder
	instance int
	dead     bool
}

func (n *recorded) record(c Call) {
	c.Instance = n.instance
	n.r.calls = append(n.r.calls, c)
}

func (n *recorded) Process(left, right []float32) {
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	for i := range left {
		left[i] = n.r.Fill
	}
	copy(right, left)
	n.record(Call{Kind: CallProcess, Frames: len(left)})
}

func (n *recorded) ProcessMono(block []float32) {
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	for i := range block {
		block[i] = n.r.Fill
	}
	n.record(Call{Kind: CallProcessMono, Frames: len(block)})
}

func (n *recorded) ProcessMidi(msg engine.Message) {
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	n.record(Call{Kind: CallMidi, Message: msg})
}

func (n *recorded) UpdateParam(index int, value float32) {
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	var id string
	if index >= 0 && index < len(n.r.ids) {
		id = n.r.ids[index]
	}
	n.record(Call{Kind: CallUpdateParam, Index: index, ID: id, Value: value})
}

func (n *recorded) Destroy() {
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	if n.dead {
		panic("enginetest: engine destroyed twice")
	}
	n.dead = true
	n.r.destroyed++
	n.record(Call{Kind: CallDestroy})
}
