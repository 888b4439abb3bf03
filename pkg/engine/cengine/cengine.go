//go:build gruvah_cgo

// Package cengine links the kick engine statically through cgo. Build with
// -tags gruvah_cgo and CGO_LDFLAGS pointing at libgruvah.
package cengine

// #cgo LDFLAGS: -lgruvah -lm -ldl -lpthread
// #include <stdint.h>
// #include <stdlib.h>
//
// typedef struct KickSynth KickSynth;
// typedef struct MidiMessage MidiMessage;
//
// KickSynth *create(uintptr_t sample_rate);
// void destroy(KickSynth *kick_synth);
// void process(KickSynth *kick_synth, float *block_left, float *block_right, uintptr_t num_samples);
// void process_mono(KickSynth *kick_synth, float *block, uintptr_t num_samples);
// void process_midi_message(KickSynth *kick_synth, const MidiMessage *midi_message);
// void update_param(KickSynth *kick_synth, const char *parameter_id, float new_value);
// const MidiMessage *create_midi_message(int32_t timestamp, const uint8_t *raw_midi_data, uint8_t note_pitch, uint8_t velocity);
// void destroy_midi_message(const MidiMessage *midi_message);
//
// static void submit_note(KickSynth *k, int32_t ts, uint8_t s, uint8_t d1, uint8_t d2, uint8_t pitch, uint8_t vel) {
//     uint8_t raw[3] = {s, d1, d2};
//     const MidiMessage *m = create_midi_message(ts, raw, pitch, vel);
//     if (m == NULL) {
//         return;
//     }
//     process_midi_message(k, m);
//     destroy_midi_message(m);
// }
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/gruvah/kickbridge/pkg/engine"
)

// Factory creates statically linked engines.
type Factory struct{}

// Create implements engine.Factory.
func (Factory) Create(sampleRate uint32, ids []string) (engine.Native, error) {
	synth := C.create(C.uintptr_t(sampleRate))
	if synth == nil {
		return nil, fmt.Errorf("cengine: create(%d) returned null", sampleRate)
	}
	cids := make([]*C.char, len(ids))
	for i, id := range ids {
		cids[i] = C.CString(id)
	}
	return &instance{synth: synth, ids: cids}, nil
}

type instance struct {
	synth *C.KickSynth
	ids   []*C.char
}

func (n *instance) Process(left, right []float32) {
	C.process(n.synth,
		(*C.float)(unsafe.Pointer(&left[0])),
		(*C.float)(unsafe.Pointer(&right[0])),
		C.uintptr_t(len(left)))
}

func (n *instance) ProcessMono(block []float32) {
	C.process_mono(n.synth, (*C.float)(unsafe.Pointer(&block[0])), C.uintptr_t(len(block)))
}

func (n *instance) ProcessMidi(msg engine.Message) {
	C.submit_note(n.synth, C.int32_t(msg.Timestamp),
		C.uint8_t(msg.Raw[0]), C.uint8_t(msg.Raw[1]), C.uint8_t(msg.Raw[2]),
		C.uint8_t(msg.Pitch), C.uint8_t(msg.Velocity))
}

func (n *instance) UpdateParam(index int, value float32) {
	if index < 0 || index >= len(n.ids) {
		return
	}
	C.update_param(n.synth, n.ids[index], C.float(value))
}

func (n *instance) Destroy() {
	if n.synth == nil {
		return
	}
	C.destroy(n.synth)
	n.synth = nil
	for _, id := range n.ids {
		C.free(unsafe.Pointer(id))
	}
	n.ids = nil
}
