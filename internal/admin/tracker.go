// Package admin consumes the order repository's live feed, reconciles each
// incoming snapshot against the last known order set, and raises staff
// notifications for newly arrived orders.
package admin

import (
	"sync"

	"github.com/tdhoang/teahouse/internal/domain/order"
)

// Tracker holds the admin view's last known snapshot. The feed goroutine and
// direct admin actions may touch it concurrently, so all access goes through
// the mutex.
type Tracker struct {
	mu    sync.Mutex
	known map[string]struct{}
}

// NewTracker creates a Tracker with no known orders.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[string]struct{})}
}

// Apply replaces the held snapshot with the incoming one and reports whether
// staff should be notified: true when the snapshot contains at least one
// order id absent from the previous set AND the previous set was non-empty.
// The empty-previous guard suppresses a notification storm for pre-existing
// orders on the first snapshot after (re)subscribing.
//
// A batch of several new orders in one snapshot yields a single true.
func (t *Tracker) Apply(orders []order.Order) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[string]struct{}, len(orders))
	arrived := false
	for _, o := range orders {
		next[o.ID] = struct{}{}
		if _, ok := t.known[o.ID]; !ok {
			arrived = true
		}
	}

	notifyStaff := arrived && len(t.known) > 0
	t.known = next
	return notifyStaff
}

// Known returns the number of orders in the held snapshot.
func (t *Tracker) Known() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.known)
}
