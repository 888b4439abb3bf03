package bus

import (
	"errors"
	"testing"
)

func TestNewGenerator(t *testing.T) {
	c := NewGenerator()
	out := c.Output()
	if out.ChannelCount != 2 || out.Name != "Stereo Out" || out.MediaType != MediaTypeAudio {
		t.Errorf("output = %+v", out)
	}
	if !c.AcceptsMIDI() {
		t.Error("no event input")
	}
	buses := c.Buses()
	if len(buses) != 2 || buses[1].MediaType != MediaTypeEvent {
		t.Errorf("buses = %+v", buses)
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		channels int
		wantErr  bool
		name     string
	}{
		{0, true, ""},
		{1, false, "Mono Out"},
		{2, false, "Stereo Out"},
		{3, true, ""},
		{6, true, ""},
	}

	for _, tt := range tests {
		c, err := Negotiate(tt.channels)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedLayout) {
				t.Errorf("Negotiate(%d) error = %v, want ErrUnsupportedLayout", tt.channels, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Negotiate(%d) failed: %v", tt.channels, err)
		}
		if got := c.MainOutputChannels(); got != tt.channels {
			t.Errorf("Negotiate(%d) main output has %d channels", tt.channels, got)
		}
		if c.Output().Name != tt.name {
			t.Errorf("Negotiate(%d) output named %q", tt.channels, c.Output().Name)
		}
	}
}

func TestSupportsLayout(t *testing.T) {
	for ch := -1; ch <= 8; ch++ {
		want := ch == 1 || ch == 2
		if got := SupportsLayout(ch); got != want {
			t.Errorf("SupportsLayout(%d) = %v, want %v", ch, got, want)
		}
	}
}
