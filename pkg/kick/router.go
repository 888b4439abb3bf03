package kick

import (
	"github.com/gruvah/kickbridge/pkg/engine"
	"github.com/gruvah/kickbridge/pkg/framework/param"
)

// Router delivers every committed parameter change to the engine handle and
// keeps the slot labels in step with octave and note changes. It is
// registered on the registry by the owning Plugin and removed on Close.
type Router struct {
	params *param.Registry
	handle *engine.Handle
	labels *Labels
}

// NewRouter wires a registry to an engine handle and label set.
func NewRouter(params *param.Registry, handle *engine.Handle, labels *Labels) *Router {
	return &Router{params: params, handle: handle, labels: labels}
}

// OnParameterChanged forwards value to the engine and, for octave and note
// parameters, republishes the label of their slot. It may be called from
// any goroutine.
func (r *Router) OnParameterChanged(key Key, value float64) {
	r.handle.SetParameter(int(key), value)

	if slot, role := key.Slot(); role == RoleOctave || role == RoleNote {
		r.labels.Recompute(slot)
	}
}

// ParameterChanged implements param.Listener.
func (r *Router) ParameterChanged(p *param.Parameter, value float64) {
	r.OnParameterChanged(Key(p.Index), value)
}

// SyncAll routes the current value of every declared parameter. The engine
// keeps no defaults of its own, so this runs at prepare time and after a
// state restore.
func (r *Router) SyncAll() {
	for _, p := range r.params.All() {
		r.OnParameterChanged(Key(p.Index), p.Value())
	}
}
