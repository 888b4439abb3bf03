// Package process provides the per-block audio context handed to the block
// processor. Everything it holds is allocated up front.
package process

import (
	"github.com/gruvah/kickbridge/pkg/midi"
)

// Context is one audio block: output channels written in place plus the
// MIDI events delivered for the block.
type Context struct {
	Output     [][]float32
	Events     *midi.Buffer
	SampleRate float64

	storage  [][]float32
	maxBlock int
}

// NewContext allocates channels buffers of maxBlockSize samples and an
// event buffer holding maxEvents events.
func NewContext(maxBlockSize, channels, maxEvents int) *Context {
	storage := make([][]float32, channels)
	for ch := range storage {
		storage[ch] = make([]float32, maxBlockSize)
	}
	output := make([][]float32, channels)
	copy(output, storage)

	return &Context{
		Output:   output,
		Events:   midi.NewBuffer(maxEvents),
		storage:  storage,
		maxBlock: maxBlockSize,
	}
}

// MaxBlockSize returns the largest block the context can hold.
func (c *Context) MaxBlockSize() int {
	return c.maxBlock
}

// SetFrames resizes every output channel to n samples, clamped to the
// allocated size, and returns the size actually set.
func (c *Context) SetFrames(n int) int {
	if n < 0 {
		n = 0
	}
	if n > c.maxBlock {
		n = c.maxBlock
	}
	for ch := range c.Output {
		c.Output[ch] = c.storage[ch][:n]
	}
	return n
}

// NumSamples returns the frame count of the block: the shortest output
// channel, so no channel is read or written past its end.
func (c *Context) NumSamples() int {
	if len(c.Output) == 0 {
		return 0
	}
	n := len(c.Output[0])
	for _, ch := range c.Output[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// Reset empties the event buffer for the next block.
func (c *Context) Reset() {
	if c.Events != nil {
		c.Events.Reset()
	}
}
