// Package eventbus provides a typed, synchronous publish/subscribe bus used by
// the domain model to notify views, caches and the change monitor about state
// changes.
//
// Every event name is bound to exactly one payload type through a Kind value.
// Kinds are declared once as package-level variables by the packages that
// publish them, which keeps the vocabulary closed and the payloads strongly
// typed while preserving per-attribute granularity ("task.dueDateTime",
// "tasks.add", "effort.duration", ...).
package eventbus

import (
	"fmt"
	"sort"
	"sync"
)

// Event is the wire name of an event kind.
type Event string

// Envelope carries a published payload to untyped subscribers.
type Envelope struct {
	Event   Event
	Payload any
}

// Kind binds an event name to its payload type P.
type Kind[P any] struct {
	event Event
}

var (
	kindsMu sync.Mutex
	kinds   = map[Event]string{}
)

// NewKind declares an event kind. Declaring the same name twice with different
// payload types panics; kinds are meant to be package-level variables.
func NewKind[P any](name string) Kind[P] {
	var zero P
	typeName := fmt.Sprintf("%T", zero)
	if typeName == "<nil>" {
		typeName = fmt.Sprintf("%T", &zero)
	}

	kindsMu.Lock()
	defer kindsMu.Unlock()
	if existing, ok := kinds[Event(name)]; ok && existing != typeName {
		panic(fmt.Sprintf("eventbus: kind %q redeclared with payload %s (was %s)", name, typeName, existing))
	}
	kinds[Event(name)] = typeName

	return Kind[P]{event: Event(name)}
}

// Event returns the kind's event name.
func (k Kind[P]) Event() Event { return k.event }

// String implements fmt.Stringer.
func (k Kind[P]) String() string { return string(k.event) }

// Kinds returns every declared event name, sorted.
func Kinds() []Event {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	out := make([]Event, 0, len(kinds))
	for ev := range kinds {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Subscribe registers fn for events of kind k on behalf of owner. owner must be
// comparable (typically a pointer to the observing object); registering the
// same (owner, kind) pair again is a no-op.
func Subscribe[P any](b *Bus, k Kind[P], owner any, fn func(P)) {
	b.SubscribeEvent(k.event, owner, func(e Envelope) {
		fn(e.Payload.(P))
	})
}

// Publish delivers payload to every subscriber of k synchronously, in
// registration order. A nil bus discards the event.
func Publish[P any](b *Bus, k Kind[P], payload P) {
	if b == nil {
		return
	}
	b.publish(k.event, payload)
}
