package bridge

import (
	"fmt"
	"sort"
	"sync"
)

// Component is a mounted piece of content.
type Component interface {
	Update(params map[string]any)
	Dispose()
}

// Factory creates a component for node. Returning an error (or panicking)
// fails the mount.
type Factory func(node *Node, props Props) (Component, error)

// Registry is a Bridge that resolves descriptors by component name.
// Registration is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds name to f, replacing any previous factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// SetFallback sets the factory used for unknown component names. Without
// one, mounting an unknown component fails.
func (r *Registry) SetFallback(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = f
}

// Names returns registered component names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Mount implements Bridge.
func (r *Registry) Mount(node *Node, d Descriptor, props Props) (h Handle, err error) {
	r.mu.RLock()
	f, ok := r.factories[d.Component]
	if !ok {
		f = r.fallback
	}
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("bridge: unknown component %q", d.Component)
	}

	defer func() {
		if rec := recover(); rec != nil {
			h, err = nil, fmt.Errorf("bridge: component %q panicked during mount: %v", d.Component, rec)
		}
	}()
	c, err := f(node, props)
	if err != nil {
		return nil, fmt.Errorf("bridge: mount %q: %w", d.Component, err)
	}
	if c == nil {
		return nil, fmt.Errorf("bridge: component %q returned nothing", d.Component)
	}
	return &handle{comp: c}, nil
}

// handle serializes Update and Dispose. A Dispose that arrives while an
// Update is running (from another goroutine or from inside the Update) is
// deferred until the Update returns; later Updates are dropped.
type handle struct {
	mu       sync.Mutex
	comp     Component
	updating int
	disposed bool
	released bool
}

func (h *handle) Update(params map[string]any) {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.updating++
	h.mu.Unlock()

	// A panicking component still leaves the update, so a pending Dispose
	// is not lost.
	defer h.doneUpdating()
	h.comp.Update(params)
}

func (h *handle) doneUpdating() {
	h.mu.Lock()
	h.updating--
	release := h.disposed && h.updating == 0 && !h.released
	if release {
		h.released = true
	}
	h.mu.Unlock()
	if release {
		h.comp.Dispose()
	}
}

func (h *handle) Dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	release := h.updating == 0
	if release {
		h.released = true
	}
	h.mu.Unlock()
	if release {
		h.comp.Dispose()
	}
}
