package events

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"
)

// Bus errors.
var (
	ErrInvalidEventKind = errors.New("invalid event kind")
	ErrNilHandler       = errors.New("handler cannot be nil")
)

// SubscriptionID identifies a registered handler for later removal.
type SubscriptionID int64

// subscription pairs a handler with its identity key. The key is the
// handler's function pointer, which makes re-subscribing the same handler
// value a detectable no-op. Closures created from the same literal share a
// pointer and count as the same handler.
type subscription struct {
	handler Handler
	id      SubscriptionID
	key     uintptr
}

// Bus is a synchronous publish/subscribe registry keyed by event kind.
// Subscribe, Unsubscribe and Emit are safe to call from multiple goroutines;
// handlers run sequentially on the emitting goroutine.
type Bus struct {
	subs   map[Kind][]subscription
	nextID SubscriptionID
	mu     sync.RWMutex
}

// NewBus constructs an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]subscription)}
}

// Subscribe registers a handler for the given kind and returns its
// subscription id. Subscribing the same handler value twice is a no-op that
// returns the existing id.
func (b *Bus) Subscribe(kind Kind, handler Handler) (SubscriptionID, error) {
	if !kind.Valid() {
		return 0, ErrInvalidEventKind
	}
	if handler == nil {
		return 0, ErrNilHandler
	}

	key := reflect.ValueOf(handler).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[kind] {
		if sub.key == key {
			return sub.id, nil
		}
	}

	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{handler: handler, id: id, key: key})
	return id, nil
}

// Unsubscribe removes a handler from the given kind. Returns whether a
// handler was actually removed; unknown kinds and unregistered handlers are
// not errors.
func (b *Bus) Unsubscribe(kind Kind, handler Handler) bool {
	if handler == nil {
		return false
	}
	key := reflect.ValueOf(handler).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[kind]
	for i, sub := range subs {
		if sub.key == key {
			b.subs[kind] = append(subs[:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// UnsubscribeID removes the handler identified by the given subscription id,
// whatever kind it was registered under.
func (b *Bus) UnsubscribeID(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, subs := range b.subs {
		for i, sub := range subs {
			if sub.id == id {
				b.subs[kind] = append(subs[:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Emit delivers the payload to every handler registered for the kind and
// returns the number of handlers notified. Handlers are invoked sequentially
// on the caller's goroutine over a snapshot of the registry, so handlers
// added or removed mid-emission do not affect the current emission. A
// panicking handler is logged and skipped; it never prevents the remaining
// handlers from running and never propagates to the emitter.
func (b *Bus) Emit(kind Kind, payload Payload) int {
	if !kind.Valid() {
		slog.Warn("emit with unknown event kind", "kind", string(kind))
		return 0
	}

	b.mu.RLock()
	snapshot := make([]subscription, len(b.subs[kind]))
	copy(snapshot, b.subs[kind])
	b.mu.RUnlock()

	if len(snapshot) == 0 {
		return 0
	}

	merged := payload.Clone()
	merged[KeyEventType] = kind

	for _, sub := range snapshot {
		b.invoke(kind, sub, merged)
	}
	return len(snapshot)
}

func (b *Bus) invoke(kind Kind, sub subscription, payload Payload) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"kind", string(kind),
				"subscription_id", int64(sub.id),
				"panic", r)
		}
	}()
	sub.handler(payload)
}

// SubscriberCount returns the number of handlers registered for the kind.
func (b *Bus) SubscriberCount(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}

// ClearSubscribers removes every handler registered for the kind and returns
// how many were removed.
func (b *Bus) ClearSubscribers(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.subs[kind])
	delete(b.subs, kind)
	return n
}

// ClearAll removes every handler for every kind and returns the total
// removed.
func (b *Bus) ClearAll() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for _, subs := range b.subs {
		total += len(subs)
	}
	b.subs = make(map[Kind][]subscription)
	return total
}
