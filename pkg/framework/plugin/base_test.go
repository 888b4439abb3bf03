package plugin

import (
	"sync"
	"testing"

	"github.com/gruvah/kickbridge/pkg/framework/param"
)

func TestSetLayoutWhileReading(t *testing.T) {
	reg, err := param.NewRegistry(param.Int("octave_1", "Octave 1", 0, 10, 8).Build())
	if err != nil {
		t.Fatal(err)
	}
	b := NewBase(Info{ID: "com.gruvah.kick"}, reg)
	if got := b.Buses().MainOutputChannels(); got != 2 {
		t.Fatalf("default layout has %d channels, want 2", got)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if err := b.SetLayout(1 + i%2); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if n := b.Buses().MainOutputChannels(); n != 1 && n != 2 {
				t.Errorf("read %d channels mid-update", n)
				return
			}
		}
	}()
	wg.Wait()

	if err := b.SetLayout(3); err == nil {
		t.Error("SetLayout(3) accepted")
	}
	if got := b.Buses().MainOutputChannels(); got != 2 {
		t.Errorf("layout after rejected request = %d, want 2", got)
	}
}
