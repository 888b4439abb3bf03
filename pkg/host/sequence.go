package host

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/gruvah/kickbridge/pkg/midi"
)

// TimedEvent is a MIDI event at an absolute frame.
type TimedEvent struct {
	Frame int64
	Event midi.Event
}

// Sequence is a timeline of MIDI events in frames. A non-zero Loop makes
// the timeline repeat every Loop frames.
type Sequence struct {
	events []TimedEvent
	Loop   int64
}

// Add inserts an event, keeping equal frames in insertion order.
func (s *Sequence) Add(frame int64, e midi.Event) {
	i := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Frame > frame
	})
	s.events = append(s.events, TimedEvent{})
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = TimedEvent{Frame: frame, Event: e}
}

// Events returns the timeline. It must not be modified.
func (s *Sequence) Events() []TimedEvent {
	return s.events
}

// Len returns the number of events.
func (s *Sequence) Len() int {
	return len(s.events)
}

// End returns the frame after the last event, or Loop when looping.
func (s *Sequence) End() int64 {
	if s.Loop > 0 {
		return s.Loop
	}
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Frame + 1
}

// Fill adds to buf the events that fall in [start, start+frames), with
// offsets relative to start. A looping sequence wraps.
func (s *Sequence) Fill(buf *midi.Buffer, start int64, frames int) {
	end := start + int64(frames)
	if s.Loop <= 0 {
		s.fillRange(buf, start, end, start)
		return
	}
	for pos := start; pos < end; {
		local := pos % s.Loop
		chunk := min(end-pos, s.Loop-local)
		s.fillRange(buf, local, local+chunk, local-(pos-start))
		pos += chunk
	}
}

func (s *Sequence) fillRange(buf *midi.Buffer, from, to, base int64) {
	i := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Frame >= from
	})
	for ; i < len(s.events) && s.events[i].Frame < to; i++ {
		e := s.events[i].Event
		e.Offset = int32(s.events[i].Frame - base)
		buf.Add(e)
	}
}

// Pulse builds a looping pattern of beats note hits per bar at bpm, each
// held for half a beat.
func Pulse(sampleRate, bpm float64, beats int, note, velocity uint8) *Sequence {
	beat := int64(math.Round(sampleRate * 60 / bpm))
	s := &Sequence{Loop: beat * int64(beats)}
	for i := 0; i < beats; i++ {
		at := int64(i) * beat
		s.Add(at, midi.NoteOn(0, 0, note, velocity))
		s.Add(at+beat/2, midi.NoteOff(0, 0, note, 0))
	}
	return s
}

type tempoChange struct {
	tick  int64
	usPQN float64
}

// ReadSMF converts the note events of a standard MIDI file into a
// sequence at sampleRate, following the file's tempo map.
func ReadSMF(r io.Reader, sampleRate float64) (*Sequence, error) {
	f, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("host: parse MIDI: %w", err)
	}
	ticks, ok := f.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("host: SMPTE time format is not supported")
	}
	resolution := float64(ticks.Resolution())

	type noteAt struct {
		tick  int64
		order int
		event midi.Event
	}
	var notes []noteAt
	tempos := []tempoChange{{tick: 0, usPQN: 500000}}

	for _, track := range f.Tracks {
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := []byte(ev.Message)

			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				us := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if us > 0 {
					tempos = append(tempos, tempoChange{tick: tick, usPQN: float64(us)})
				}
				continue
			}
			if len(msg) >= 3 {
				if status := msg[0] & 0xF0; status == 0x80 || status == 0x90 {
					notes = append(notes, noteAt{tick: tick, order: len(notes), event: midi.FromBytes(0, msg[:3])})
				}
			}
		}
	}

	sort.SliceStable(tempos, func(i, j int) bool { return tempos[i].tick < tempos[j].tick })
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].tick < notes[j].tick })

	seconds := func(tick int64) float64 {
		var sec float64
		last := tempos[0]
		for _, t := range tempos[1:] {
			if t.tick >= tick {
				break
			}
			sec += float64(t.tick-last.tick) / resolution * last.usPQN / 1e6
			last = t
		}
		return sec + float64(tick-last.tick)/resolution*last.usPQN/1e6
	}

	s := &Sequence{}
	for _, n := range notes {
		s.Add(int64(math.Round(seconds(n.tick)*sampleRate)), n.event)
	}
	return s, nil
}

// LoadSMF reads a standard MIDI file from path.
func LoadSMF(path string, sampleRate float64) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	defer f.Close()
	return ReadSMF(f, sampleRate)
}

// WriteSMF writes the note events of s as a single-track standard MIDI
// file at bpm with 480 ticks per quarter note.
func (s *Sequence) WriteSMF(w io.Writer, sampleRate, bpm float64) error {
	const resolution = 480
	out := smf.New()
	out.TimeFormat = smf.MetricTicks(resolution)

	var track smf.Track
	us := uint32(60000000.0 / bpm)
	track.Add(0, smf.Message([]byte{0xFF, 0x51, 0x03, byte(us >> 16), byte(us >> 8), byte(us)}))

	ticksPerFrame := bpm / 60 * resolution / sampleRate
	var last int64
	for _, te := range s.events {
		tick := int64(math.Round(float64(te.Frame) * ticksPerFrame))
		e := te.Event
		var msg gomidi.Message
		switch e.Type() {
		case midi.EventTypeNoteOn:
			msg = gomidi.NoteOn(e.Channel(), e.Data[1], e.Data[2])
		case midi.EventTypeNoteOff:
			msg = gomidi.NoteOff(e.Channel(), e.Data[1])
		default:
			continue
		}
		track.Add(uint32(tick-last), msg)
		last = tick
	}
	track.Close(0)

	if err := out.Add(track); err != nil {
		return fmt.Errorf("host: add track: %w", err)
	}
	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("host: write MIDI: %w", err)
	}
	return nil
}
