// Package events provides a minimal synchronous publish/subscribe primitive.
package events

import (
	"sync"
)

// Listener receives published events.
type Listener[E any] func(E)

type subscription[E any] struct {
	id uint64
	fn Listener[E]
}

// Emitter delivers events to listeners in subscription order. It is safe for
// concurrent use. Listeners run on the publishing goroutine, outside the
// emitter's lock, so they may subscribe, unsubscribe or publish themselves.
type Emitter[E any] struct {
	mu     sync.RWMutex
	subs   []subscription[E]
	nextID uint64
}

// On registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (e *Emitter[E]) On(fn Listener[E]) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription[E]{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Emitter[E]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s.id == id {
			// Copy so in-flight Emit snapshots stay intact
			subs := make([]subscription[E], 0, len(e.subs)-1)
			subs = append(subs, e.subs[:i]...)
			e.subs = append(subs, e.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to every listener registered at the time of the call.
func (e *Emitter[E]) Emit(ev E) {
	e.mu.RLock()
	subs := e.subs
	e.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
