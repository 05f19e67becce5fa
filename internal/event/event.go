// Package event is a minimal typed listener list. Subscribing returns a
// disposer; emitting calls every listener synchronously in subscription
// order. A panicking listener is recovered so the remaining listeners still
// run.
package event

// Emitter fans a value of type T out to its listeners. The zero value is
// ready to use. Not safe for concurrent use.
type Emitter[T any] struct {
	listeners []listener[T]
	next      int

	// OnPanic, if set, receives the value recovered from a panicking listener.
	OnPanic func(recovered any)
}

type listener[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it. Calling the
// disposer more than once is harmless.
func (e *Emitter[T]) Subscribe(fn func(T)) (dispose func()) {
	e.next++
	id := e.next
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every listener with v. Listeners added or removed during Emit
// take effect from the next Emit.
func (e *Emitter[T]) Emit(v T) {
	if len(e.listeners) == 0 {
		return
	}
	snapshot := make([]listener[T], len(e.listeners))
	copy(snapshot, e.listeners)
	for _, l := range snapshot {
		e.safeCall(l.fn, v)
	}
}

// Len returns the number of listeners.
func (e *Emitter[T]) Len() int { return len(e.listeners) }

// Clear removes every listener.
func (e *Emitter[T]) Clear() { e.listeners = nil }

func (e *Emitter[T]) safeCall(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil && e.OnPanic != nil {
			e.OnPanic(r)
		}
	}()
	fn(v)
}
