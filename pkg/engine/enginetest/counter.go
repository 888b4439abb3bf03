package enginetest

import (
	"sync/atomic"

	"github.com/gruvah/kickbridge/pkg/engine"
)

// Counter is a Factory whose engines only count calls with atomics, so it
// can sit behind an audio loop under stress without perturbing timing. Its
// engines detect use after Destroy.
type Counter struct {
	Fill float32

	Created      atomic.Int64
	Destroyed    atomic.Int64
	Blocks       atomic.Int64
	Frames       atomic.Int64
	Notes        atomic.Int64
	Updates      atomic.Int64
	UseAfterFree atomic.Int64
}

// Create implements engine.Factory.
func (c *Counter) Create(sampleRate uint32, ids []string) (engine.Native, error) {
	c.Created.Add(1)
	return &counted{c: c}, nil
}

type counted struct {
	c    *Counter
	dead atomic.Bool
}

func (n *counted) check() {
	if n.dead.Load() {
		n.c.UseAfterFree.Add(1)
	}
}

func (n *counted) Process(left, right []float32) {
	n.check()
	for i := range left {
		left[i] = n.c.Fill
	}
	copy(right, left)
	n.c.Blocks.Add(1)
	n.c.Frames.Add(int64(len(left)))
}

func (n *counted) ProcessMono(block []float32) {
	n.check()
	for i := range block {
		block[i] = n.c.Fill
	}
	n.c.Blocks.Add(1)
	n.c.Frames.Add(int64(len(block)))
}

func (n *counted) ProcessMidi(engine.Message) {
	n.check()
	n.c.Notes.Add(1)
}

func (n *counted) UpdateParam(int, float32) {
	n.check()
	n.c.Updates.Add(1)
}

func (n *counted) Destroy() {
	if n.dead.Swap(true) {
		n.c.UseAfterFree.Add(1)
		return
	}
	n.c.Destroyed.Add(1)
}
