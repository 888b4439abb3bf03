package param

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Listener receives every committed parameter change.
type Listener interface {
	ParameterChanged(p *Parameter, value float64)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(p *Parameter, value float64)

// ParameterChanged implements Listener.
func (f ListenerFunc) ParameterChanged(p *Parameter, value float64) {
	f(p, value)
}

// Registry is the typed parameter table of one plugin instance.
//
// The set of parameters is fixed at construction, so lookups never lock.
// Listeners are stored copy-on-write: registering takes a mutex, notifying
// does not.
type Registry struct {
	params []*Parameter
	byID   map[string]*Parameter

	listeners atomic.Pointer[[]*subscription]
	mu        sync.Mutex
}

type subscription struct {
	l Listener
}

// NewRegistry builds a registry from params in declaration order. Each
// parameter's Index is set to its position.
func NewRegistry(params ...*Parameter) (*Registry, error) {
	r := &Registry{
		params: make([]*Parameter, 0, len(params)),
		byID:   make(map[string]*Parameter, len(params)),
	}

	for _, p := range params {
		if _, exists := r.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParameter, p.ID)
		}
		p.Index = len(r.params)
		r.params = append(r.params, p)
		r.byID[p.ID] = p
	}

	empty := make([]*subscription, 0)
	r.listeners.Store(&empty)
	return r, nil
}

// Get retrieves a parameter by index
func (r *Registry) Get(index int) *Parameter {
	if index < 0 || index >= len(r.params) {
		return nil
	}
	return r.params[index]
}

// Lookup retrieves a parameter by its string id.
func (r *Registry) Lookup(id string) (*Parameter, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return p, nil
}

// Count returns the number of parameters
func (r *Registry) Count() int {
	return len(r.params)
}

// All returns all parameters in order. The slice must not be modified.
func (r *Registry) All() []*Parameter {
	return r.params
}

// IDs returns the parameter ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.params))
	for i, p := range r.params {
		ids[i] = p.ID
	}
	return ids
}

// Value returns the plain value at index, or 0 for an unknown index.
func (r *Registry) Value(index int) float64 {
	if p := r.Get(index); p != nil {
		return p.Value()
	}
	return 0
}

// Set clamps value into range, commits it and notifies every listener with
// the committed value. It returns the committed value.
func (r *Registry) Set(index int, value float64) float64 {
	p := r.Get(index)
	if p == nil {
		return 0
	}
	committed := p.Clamp(value)
	p.store(committed)
	r.notify(p, committed)
	return committed
}

// SetByID is Set addressed by string id.
func (r *Registry) SetByID(id string, value float64) (float64, error) {
	p, err := r.Lookup(id)
	if err != nil {
		return 0, err
	}
	return r.Set(p.Index, value), nil
}

// Store commits a value without notifying listeners. It is used for bulk
// restores that resynchronize afterwards.
func (r *Registry) Store(index int, value float64) float64 {
	p := r.Get(index)
	if p == nil {
		return 0
	}
	committed := p.Clamp(value)
	p.store(committed)
	return committed
}

// Reset restores every parameter to its default without notifying.
func (r *Registry) Reset() {
	for _, p := range r.params {
		p.store(p.DefaultValue)
	}
}

// Subscribe registers l and returns a function that removes it again.
func (r *Registry) Subscribe(l Listener) (unsubscribe func()) {
	sub := &subscription{l: l}

	r.mu.Lock()
	old := *r.listeners.Load()
	next := make([]*subscription, len(old), len(old)+1)
	copy(next, old)
	next = append(next, sub)
	r.listeners.Store(&next)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(sub) })
	}
}

func (r *Registry) remove(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.listeners.Load()
	next := make([]*subscription, 0, len(old))
	for _, s := range old {
		if s != sub {
			next = append(next, s)
		}
	}
	r.listeners.Store(&next)
}

func (r *Registry) notify(p *Parameter, value float64) {
	for _, s := range *r.listeners.Load() {
		s.l.ParameterChanged(p, value)
	}
}
