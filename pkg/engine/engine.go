// Package engine wraps the native kick synthesis engine behind an
// exclusive-ownership handle that is safe to share between the control
// context and the audio callback.
package engine

import "fmt"

// Message is the engine's representation of a note event. It is a plain
// value: backends turn it into a native message handle for the duration of
// a single ProcessMidi call.
type Message struct {
	Timestamp int32   // Sample offset relative to the block start
	Raw       [3]byte // Status, data1, data2 as delivered by the host
	Pitch     uint8
	Velocity  uint8
}

// Action is the note action the engine derives from a message.
type Action uint8

const (
	// ActionNoteOff releases the note.
	ActionNoteOff Action = iota
	// ActionNoteOn triggers the note.
	ActionNoteOn
)

// String returns the action name.
func (a Action) String() string {
	if a == ActionNoteOn {
		return "NoteOn"
	}
	return "NoteOff"
}

// Action returns note-on only for a 0x9n status with non-zero velocity; a
// note-on with velocity 0 is a note-off.
func (m Message) Action() Action {
	if m.Raw[0]&0xF0 == 0x90 && m.Velocity > 0 {
		return ActionNoteOn
	}
	return ActionNoteOff
}

// String formats the message for logs and test failures.
func (m Message) String() string {
	return fmt.Sprintf("%s{pitch:%d, vel:%d, ts:%d}", m.Action(), m.Pitch, m.Velocity, m.Timestamp)
}

// Native is one live instance of the synthesis engine, reached through its
// C ABI. All methods except Destroy are called from the audio callback and
// must not allocate, lock or block.
type Native interface {
	// Process renders len(left) frames in place; right receives the same
	// frames.
	Process(left, right []float32)
	// ProcessMono renders len(block) frames in place.
	ProcessMono(block []float32)
	// ProcessMidi queues one note event for the current block.
	ProcessMidi(msg Message)
	// UpdateParam sets the parameter declared at index.
	UpdateParam(index int, value float32)
	// Destroy releases the native instance. It is called exactly once.
	Destroy()
}

// Factory creates native engine instances. ids lists the parameter ids in
// index order so backends can prepare their string arguments up front.
type Factory interface {
	Create(sampleRate uint32, ids []string) (Native, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(sampleRate uint32, ids []string) (Native, error)

// Create implements Factory.
func (f FactoryFunc) Create(sampleRate uint32, ids []string) (Native, error) {
	return f(sampleRate, ids)
}
