package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// FrameWriter consumes interleaved float32 frames.
type FrameWriter interface {
	WriteFrames(samples []float32) error
}

const wavHeaderSize = 44

// WAVWriter writes 32-bit IEEE float WAV data. The RIFF and data sizes are
// patched on Close, so the destination must be seekable.
type WAVWriter struct {
	w          io.WriteSeeker
	sampleRate uint32
	channels   uint16
	dataBytes  uint32
	buf        []byte
	closed     bool
}

// NewWAVWriter writes a provisional header to w.
func NewWAVWriter(w io.WriteSeeker, sampleRate, channels int) (*WAVWriter, error) {
	if sampleRate <= 0 || channels <= 0 || channels > math.MaxUint16 {
		return nil, fmt.Errorf("wav: invalid format %d Hz, %d channels", sampleRate, channels)
	}
	ww := &WAVWriter{w: w, sampleRate: uint32(sampleRate), channels: uint16(channels)}
	if err := ww.writeHeader(); err != nil {
		return nil, err
	}
	return ww, nil
}

func (ww *WAVWriter) writeHeader() error {
	var h [wavHeaderSize]byte
	blockAlign := uint32(ww.channels) * 4

	copy(h[0:], "RIFF")
	binary.LittleEndian.PutUint32(h[4:], 36+ww.dataBytes)
	copy(h[8:], "WAVE")
	copy(h[12:], "fmt ")
	binary.LittleEndian.PutUint32(h[16:], 16)
	binary.LittleEndian.PutUint16(h[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(h[22:], ww.channels)
	binary.LittleEndian.PutUint32(h[24:], ww.sampleRate)
	binary.LittleEndian.PutUint32(h[28:], ww.sampleRate*blockAlign)
	binary.LittleEndian.PutUint16(h[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:], 32)
	copy(h[36:], "data")
	binary.LittleEndian.PutUint32(h[40:], ww.dataBytes)

	if _, err := ww.w.Write(h[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}
	return nil
}

// WriteFrames appends interleaved samples.
func (ww *WAVWriter) WriteFrames(samples []float32) error {
	if ww.closed {
		return errors.New("wav: write after close")
	}
	n := len(samples) * 4
	if cap(ww.buf) < n {
		ww.buf = make([]byte, n)
	}
	buf := ww.buf[:n]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	if _, err := ww.w.Write(buf); err != nil {
		return fmt.Errorf("wav: write data: %w", err)
	}
	ww.dataBytes += uint32(n)
	return nil
}

// Frames returns the number of frames written so far.
func (ww *WAVWriter) Frames() int64 {
	return int64(ww.dataBytes) / (int64(ww.channels) * 4)
}

// Close rewrites the header with the final sizes. It does not close the
// underlying writer.
func (ww *WAVWriter) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	if _, err := ww.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("wav: seek: %w", err)
	}
	if err := ww.writeHeader(); err != nil {
		return err
	}
	_, err := ww.w.Seek(0, io.SeekEnd)
	return err
}
