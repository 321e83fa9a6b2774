// Package swbus is the typed message bus between the background push worker
// and open views. The worker and views share no memory; these messages are
// their only coordination channel.
package swbus

import "sync"

// Message is the tagged union of everything the worker and views exchange.
type Message interface {
	kind() string
}

// UpdateBadge carries an authoritative unread count computed by the worker.
type UpdateBadge struct {
	Count int
}

// ShowNotification asks views to present a notification in-app when the
// native display path is unavailable.
type ShowNotification struct {
	Title string
	Body  string
	Data  map[string]string
}

// BadgeCleared announces that some view reset the badge to zero.
type BadgeCleared struct{}

// Activated announces that the background worker took control.
type Activated struct{}

func (UpdateBadge) kind() string      { return "UPDATE_BADGE" }
func (ShowNotification) kind() string { return "SHOW_NOTIFICATION" }
func (BadgeCleared) kind() string     { return "BADGE_CLEARED" }
func (Activated) kind() string        { return "SW_ACTIVATED" }

// Bus fans published messages out to every subscriber. Publish never blocks:
// a subscriber that stopped draining its channel misses messages instead of
// stalling the worker.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Message
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Message)}
}

// Subscribe registers a new receiver. The returned cancel func must be called
// when the view is torn down.
func (b *Bus) Subscribe() (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Message, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers msg to every current subscriber.
func (b *Bus) Publish(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
