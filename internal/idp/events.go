package idp

import (
	"sync"

	"github.com/greetings-portal/web/internal/model"
)

// LoginEvent is emitted after an interactive login attempt completes.
// Account is set on success, Err on failure; SessionID identifies the
// browser session the attempt belongs to.
type LoginEvent struct {
	SessionID string
	Account   *model.Account
	Err       error
}

// EventBus is a subscribable login success/failure stream. Publishing
// never blocks: a subscriber that stopped draining misses events rather
// than stalling the login flow.
type EventBus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan LoginEvent
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan LoginEvent)}
}

// Subscribe registers a listener and returns its channel plus an
// unsubscribe function. Callers must unsubscribe on teardown so repeated
// mounts do not leak handlers.
func (b *EventBus) Subscribe() (<-chan LoginEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan LoginEvent, 8)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

func (b *EventBus) Publish(event LoginEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
