package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/gruvah/kickbridge/pkg/engine"
)

// Translate converts a note-on or note-off event into the engine's message.
// Every other message type reports false and is ignored by the caller.
// A note-on with velocity 0 becomes a note-off with velocity 0.
func Translate(e *Event) (engine.Message, bool) {
	if e.Size < 3 {
		return engine.Message{}, false
	}
	msg := gomidi.Message(e.Data[:e.Size])

	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
	case msg.GetNoteEnd(&ch, &key):
		vel = 0
		if e.Data[0]&0xF0 == 0x80 {
			vel = e.Data[2]
		}
	default:
		return engine.Message{}, false
	}

	return engine.Message{
		Timestamp: e.Offset,
		Raw:       e.Data,
		Pitch:     key,
		Velocity:  vel,
	}, true
}
