package plugin

import (
	"sync/atomic"

	"github.com/gruvah/kickbridge/pkg/framework/bus"
	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/framework/state"
)

// Base provides core functionality for all plugins: metadata, parameters,
// state blobs and the negotiated bus layout.
type Base struct {
	Info   Info
	params *param.Registry
	state  *state.Manager
	buses  atomic.Pointer[bus.Configuration]
}

// NewBase creates a new plugin base with a stereo generator layout.
func NewBase(info Info, params *param.Registry) *Base {
	b := &Base{
		Info:   info,
		params: params,
		state:  state.NewManager(params),
	}
	b.buses.Store(bus.NewGenerator())
	return b
}

// GetInfo returns plugin metadata
func (b *Base) GetInfo() Info {
	return b.Info
}

// Parameters returns the parameter registry
func (b *Base) Parameters() *param.Registry {
	return b.params
}

// Buses returns the negotiated bus configuration. It may be called from any
// goroutine.
func (b *Base) Buses() *bus.Configuration {
	return b.buses.Load()
}

// SetLayout negotiates the main output channel count. The layout is left
// unchanged when the request is rejected. Readers of Buses see either the
// old or the new configuration, never a mix.
func (b *Base) SetLayout(channels int) error {
	config, err := bus.Negotiate(channels)
	if err != nil {
		return err
	}
	b.buses.Store(config)
	return nil
}

// SaveState returns every parameter value as an opaque blob.
func (b *Base) SaveState() ([]byte, error) {
	return b.state.Bytes()
}

// LoadState commits the values of blob without notifying listeners.
func (b *Base) LoadState(blob []byte) (int, error) {
	return b.state.Restore(blob)
}
