package eventbus

import (
	"sync"
	"sync/atomic"
)

type subscription struct {
	owner  any
	event  Event
	fn     func(Envelope)
	active atomic.Bool
}

// Bus dispatches events synchronously on the publisher's goroutine.
//
// Dispatch is re-entrant: a handler may publish further events, which are
// delivered depth-first before control returns to the outer Publish. Handler
// panics are not recovered; they unwind into the publisher.
type Bus struct {
	mu      sync.Mutex
	subs    map[Event][]*subscription
	byOwner map[any]map[Event]*subscription

	hooks hooks
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs:    make(map[Event][]*subscription),
		byOwner: make(map[any]map[Event]*subscription),
	}
}

// SubscribeEvent registers an untyped handler for event on behalf of owner.
// It exists for generic observers such as the change monitor and debug
// logging; domain code should prefer the typed Subscribe.
func (b *Bus) SubscribeEvent(event Event, owner any, fn func(Envelope)) {
	b.mu.Lock()
	owned := b.byOwner[owner]
	if owned == nil {
		owned = make(map[Event]*subscription)
		b.byOwner[owner] = owned
	}
	if _, exists := owned[event]; exists {
		b.mu.Unlock()
		return
	}

	sub := &subscription{owner: owner, event: event, fn: fn}
	sub.active.Store(true)
	owned[event] = sub
	b.subs[event] = append(b.subs[event], sub)
	b.mu.Unlock()

	b.runOnSubscribe(event)
}

// Unsubscribe removes owner's handlers for the given events, or for every
// event when none are given. Unknown owners are ignored.
func (b *Bus) Unsubscribe(owner any, events ...Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	owned := b.byOwner[owner]
	if owned == nil {
		return
	}

	if len(events) == 0 {
		for ev := range owned {
			events = append(events, ev)
		}
	}

	for _, ev := range events {
		sub, ok := owned[ev]
		if !ok {
			continue
		}
		sub.active.Store(false)
		delete(owned, ev)
		b.subs[ev] = removeSub(b.subs[ev], sub)
		if len(b.subs[ev]) == 0 {
			delete(b.subs, ev)
		}
	}

	if len(owned) == 0 {
		delete(b.byOwner, owner)
	}
}

// IsSubscribed reports whether owner currently handles event.
func (b *Bus) IsSubscribed(owner any, event Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.byOwner[owner][event]
	return ok
}

// SubscriberCount returns the number of handlers registered for event.
func (b *Bus) SubscriberCount(event Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}

func (b *Bus) publish(event Event, payload any) {
	b.mu.Lock()
	subs := make([]*subscription, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.Unlock()

	b.runOnPublish(event, payload)

	env := Envelope{Event: event, Payload: payload}
	for _, sub := range subs {
		// A handler earlier in this dispatch may have unsubscribed sub.
		if !sub.active.Load() {
			continue
		}
		sub.fn(env)
	}
}

func removeSub(subs []*subscription, target *subscription) []*subscription {
	for i, s := range subs {
		if s == target {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
