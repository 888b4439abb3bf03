package process

// Interleave writes the first frames of every output channel into dst as
// interleaved samples and returns the number of samples written.
func (c *Context) Interleave(dst []float32) int {
	channels := c.NumOutputChannels()
	if channels == 0 {
		return 0
	}
	frames := c.NumSamples()
	if limit := len(dst) / channels; frames > limit {
		frames = limit
	}
	for ch := 0; ch < channels; ch++ {
		src := c.Output[ch]
		for i := 0; i < frames; i++ {
			dst[i*channels+ch] = src[i]
		}
	}
	return frames * channels
}
