package midi

// Buffer is the fixed-capacity event list for one block. It is owned by the
// audio context and never grows after construction.
type Buffer struct {
	events  []Event
	dropped int
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{events: make([]Event, 0, capacity)}
}

// Add inserts e after every event with an offset <= e.Offset, so events with
// equal offsets keep arrival order. It reports false and counts a drop when
// the buffer is full.
func (b *Buffer) Add(e Event) bool {
	if len(b.events) == cap(b.events) {
		b.dropped++
		return false
	}
	i := len(b.events)
	for i > 0 && b.events[i-1].Offset > e.Offset {
		i--
	}
	b.events = b.events[:len(b.events)+1]
	copy(b.events[i+1:], b.events[i:])
	b.events[i] = e
	return true
}

func (b *Buffer) Len() int {
	return len(b.events)
}

func (b *Buffer) Cap() int {
	return cap(b.events)
}

// At returns a pointer into the buffer, valid until the next Add or Reset.
func (b *Buffer) At(i int) *Event {
	return &b.events[i]
}

// Dropped returns how many events did not fit since the last Reset.
func (b *Buffer) Dropped() int {
	return b.dropped
}

func (b *Buffer) Reset() {
	b.events = b.events[:0]
	b.dropped = 0
}
