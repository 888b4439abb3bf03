// Package bus describes the instrument's buses and negotiates its output
// layout with the host. The instrument has one MIDI input and one main audio
// output, mono or stereo.
package bus

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLayout is returned when a host asks for an output layout
// other than mono or stereo.
var ErrUnsupportedLayout = errors.New("unsupported channel layout")

// MediaType is what a bus carries.
type MediaType int32

const (
	MediaTypeAudio MediaType = iota
	MediaTypeEvent
)

func (m MediaType) String() string {
	if m == MediaTypeEvent {
		return "event"
	}
	return "audio"
}

// Info describes one bus.
type Info struct {
	MediaType    MediaType
	ChannelCount int
	Name         string
}

// Configuration is the negotiated set of buses.
type Configuration struct {
	output Info
	events []Info
}

// Output returns the main audio output.
func (c *Configuration) Output() Info {
	return c.output
}

// MainOutputChannels returns the channel count of the main output.
func (c *Configuration) MainOutputChannels() int {
	return c.output.ChannelCount
}

// AcceptsMIDI reports whether the configuration has an event input.
func (c *Configuration) AcceptsMIDI() bool {
	return len(c.events) > 0
}

// Buses lists every bus, output first.
func (c *Configuration) Buses() []Info {
	return append([]Info{c.output}, c.events...)
}

// SupportsLayout reports whether the instrument can render into a main
// output of the given channel count.
func SupportsLayout(channels int) bool {
	return channels == 1 || channels == 2
}

func outputName(channels int) string {
	if channels == 1 {
		return "Mono Out"
	}
	return "Stereo Out"
}

// Negotiate returns the configuration for a host-requested output channel
// count.
func Negotiate(channels int) (*Configuration, error) {
	if !SupportsLayout(channels) {
		return nil, fmt.Errorf("%w: %d output channels", ErrUnsupportedLayout, channels)
	}
	return &Configuration{
		output: Info{MediaType: MediaTypeAudio, ChannelCount: channels, Name: outputName(channels)},
		events: []Info{{MediaType: MediaTypeEvent, ChannelCount: 16, Name: "MIDI In"}},
	}, nil
}

// NewGenerator is the default stereo configuration.
func NewGenerator() *Configuration {
	c, _ := Negotiate(2)
	return c
}
