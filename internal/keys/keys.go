// ABOUTME: Process-wide key-down listener registry with scoped attachment.
// ABOUTME: Attach returns a release func; the save chord is Ctrl or Cmd plus "s".

package keys

import (
	"strings"
	"sync"
)

// Event is one key-down press.
type Event struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool

	defaultPrevented   bool
	propagationStopped bool
}

// PreventDefault marks the event's default action as suppressed.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// StopPropagation keeps handlers attached earlier from seeing the event.
func (e *Event) StopPropagation() { e.propagationStopped = true }

func (e *Event) DefaultPrevented() bool   { return e.defaultPrevented }
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// IsSaveChord reports whether ev is Ctrl+S or Cmd+S.
func IsSaveChord(ev *Event) bool {
	return (ev.Ctrl || ev.Meta) && strings.EqualFold(ev.Key, "s")
}

// Handler receives dispatched events.
type Handler func(*Event)

type listener struct {
	id uint64
	fn Handler
}

// Bus holds the attached listeners.
type Bus struct {
	mu        sync.Mutex
	listeners []listener
	next      uint64
}

// NewBus returns an empty registry.
func NewBus() *Bus {
	return &Bus{}
}

// Default is the process-wide registry.
var Default = NewBus()

// Attach registers h and returns the func that detaches it. Calling the
// release func more than once is harmless.
func (b *Bus) Attach(h Handler) (release func()) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.listeners = append(b.listeners, listener{id: id, fn: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.detach(id) })
	}
}

func (b *Bus) detach(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch delivers ev to listeners, most recently attached first, until one
// stops propagation. It reports whether the default action was prevented.
func (b *Bus) Dispatch(ev *Event) bool {
	b.mu.Lock()
	ls := make([]listener, len(b.listeners))
	copy(ls, b.listeners)
	b.mu.Unlock()

	for i := len(ls) - 1; i >= 0; i-- {
		ls[i].fn(ev)
		if ev.propagationStopped {
			break
		}
	}
	return ev.defaultPrevented
}

// Len returns the number of attached listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
