// Package feed pushes live order updates to connected admin clients over
// server-sent events and provides the JSON encoding shared with the HTTP API.
package feed

import (
	"context"
	"sync"

	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/notify"
)

// Event is one server-sent event: a name and a pre-encoded JSON payload.
type Event struct {
	Name string
	Data []byte
}

// Event names delivered to admin clients.
const (
	EventSnapshot  = "snapshot"
	EventNewOrder  = "new-order"
	EventFeedError = "feed-error"
)

// subscriberBuffer bounds how many undelivered events a client may accumulate
// before it is dropped.
const subscriberBuffer = 8

// Hub fans events out to any number of subscribers. A subscriber that cannot
// keep up is disconnected rather than allowed to block the rest; admin
// clients are expected to reconnect and receive a fresh snapshot.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
	last []byte // most recent snapshot payload, replayed to new subscribers
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new client. The latest known snapshot, if any, is
// queued immediately so a client never starts blind. The returned cancel
// function must be called when the client disconnects.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	if h.last != nil {
		ch <- Event{Name: EventSnapshot, Data: h.last}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot broadcasts a full order snapshot to every subscriber and retains
// it for late joiners.
func (h *Hub) Snapshot(orders []order.Order) {
	h.broadcast(Event{Name: EventSnapshot, Data: EncodeOrders(orders)}, true)
}

// FeedError tells connected clients the live feed broke and will not restart
// on its own.
func (h *Hub) FeedError(msg string) {
	var payload []byte
	{
		n := notify.Notification{Title: "Mất kết nối real-time", Body: msg, Tag: EventFeedError}
		payload = EncodeNotification(n)
	}
	h.broadcast(Event{Name: EventFeedError, Data: payload}, false)
}

// Notify implements notify.Notifier, pushing the notification to connected
// admin clients.
func (h *Hub) Notify(_ context.Context, n notify.Notification) error {
	h.broadcast(Event{Name: EventNewOrder, Data: EncodeNotification(n)}, false)
	return nil
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) broadcast(ev Event, retain bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if retain {
		h.last = ev.Data
	}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Slow client: drop it instead of stalling the feed.
			delete(h.subs, ch)
			close(ch)
		}
	}
}
