// Package events provides the synchronous pub/sub bus that gameplay
// systems and skill plugins communicate over, plus the fixed event
// vocabulary they share.
package events

import (
	"log"

	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
)

// Handler consumes one event payload. Handlers run synchronously on
// the emitting goroutine.
type Handler func(payload any)

type entry struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous event bus. Registrations are keyed by a
// monotonically increasing id so the unsubscribe func returned by On
// removes exactly one registration, even when the same handler is
// attached twice. Not safe for concurrent use; the game goroutine
// owns it.
type Bus struct {
	logger   telemetry.Logger
	metrics  telemetry.Metrics
	nextID   uint64
	handlers map[string][]entry
}

func NewBus(logger telemetry.Logger, metrics telemetry.Metrics) *Bus {
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	return &Bus{
		logger:   logger,
		metrics:  metrics,
		handlers: make(map[string][]entry),
	}
}

// On subscribes a handler to an event and returns its unsubscribe
// func. Unsubscribing twice is harmless.
func (b *Bus) On(event string, handler Handler) func() {
	id := b.Subscribe(event, handler)
	if id == 0 {
		return func() {}
	}
	return func() { b.Off(event, id) }
}

// Subscribe registers a handler and returns its registration id for
// removal through Off. Zero means the registration was refused.
func (b *Bus) Subscribe(event string, handler Handler) uint64 {
	if b == nil || event == "" || handler == nil {
		return 0
	}
	b.nextID++
	id := b.nextID
	b.handlers[event] = append(b.handlers[event], entry{id: id, handler: handler})
	return id
}

// Off removes one registration by id. Returns false when the id is
// not registered for the event, so a second Off is harmless.
func (b *Bus) Off(event string, id uint64) bool {
	if b == nil || id == 0 {
		return false
	}
	entries := b.handlers[event]
	for i, e := range entries {
		if e.id == id {
			b.handlers[event] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Once subscribes a handler that detaches itself after its first
// delivery. The returned unsubscribe cancels an unfired handler.
func (b *Bus) Once(event string, handler Handler) func() {
	if b == nil || event == "" || handler == nil {
		return func() {}
	}
	var id uint64
	id = b.Subscribe(event, func(payload any) {
		b.Off(event, id)
		handler(payload)
	})
	if id == 0 {
		return func() {}
	}
	return func() { b.Off(event, id) }
}

// Emit delivers the payload to every handler registered for the event,
// in registration order. The handler list is snapshotted first, so
// handlers may unsubscribe themselves or others mid-emit. A panicking
// handler is recovered and logged; siblings still run.
func (b *Bus) Emit(event string, payload any) {
	if b == nil {
		return
	}
	entries := b.handlers[event]
	if len(entries) == 0 {
		return
	}
	snapshot := append([]entry(nil), entries...)
	for _, e := range snapshot {
		b.dispatch(event, e.handler, payload)
	}
	if b.metrics != nil {
		b.metrics.Add("events_emitted", 1)
	}
}

func (b *Bus) dispatch(event string, handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Printf("events: handler panic on %q: %v", event, r)
			if b.metrics != nil {
				b.metrics.Add("events_handler_panics", 1)
			}
		}
	}()
	handler(payload)
}

// Clear drops every registration. Used at run boundaries.
func (b *Bus) Clear() {
	if b == nil {
		return
	}
	b.handlers = make(map[string][]entry)
}

// ListenerCount reports how many handlers an event currently has.
func (b *Bus) ListenerCount(event string) int {
	if b == nil {
		return 0
	}
	return len(b.handlers[event])
}
