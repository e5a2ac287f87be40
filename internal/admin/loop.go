package admin

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/feed"
	"github.com/tdhoang/teahouse/internal/notify"
)

// Loop wires the repository's live feed into the Tracker, the notification
// channels, and the admin SSE hub.
type Loop struct {
	repo     order.Repository
	tracker  *Tracker
	notifier notify.Notifier
	hub      *feed.Hub
	lg       *zap.Logger

	feedErr chan error
}

// NewLoop creates a reconciliation Loop.
func NewLoop(repo order.Repository, notifier notify.Notifier, hub *feed.Hub, lg *zap.Logger) *Loop {
	return &Loop{
		repo:     repo,
		tracker:  NewTracker(),
		notifier: notifier,
		hub:      hub,
		lg:       lg,
		feedErr:  make(chan error, 1),
	}
}

// Run subscribes to the order feed and processes snapshots until the context
// is cancelled or the feed breaks. A broken feed is terminal for the loop
// (the feed does not reconnect by itself); the error is returned so the
// caller can decide whether to surface or re-run.
func (l *Loop) Run(ctx context.Context) error {
	stop, err := l.repo.Subscribe(ctx, l.onSnapshot, l.onFeedError)
	if err != nil {
		return errors.Wrap(err, "subscribe to order feed")
	}
	defer stop()

	l.lg.Info("Order feed subscribed")

	select {
	case <-ctx.Done():
		l.lg.Info("Order feed unsubscribed")
		return nil
	case err := <-l.feedErr:
		return err
	}
}

// onSnapshot runs on every feed delivery: reconcile, refresh connected admin
// clients, and notify once per pass when new orders arrived.
func (l *Loop) onSnapshot(orders []order.Order) {
	notifyStaff := l.tracker.Apply(orders)
	l.hub.Snapshot(orders)

	pending := 0
	for _, o := range orders {
		if o.Status == order.StatusNew {
			pending++
		}
	}
	l.lg.Debug("Snapshot reconciled",
		zap.Int("orders", len(orders)),
		zap.Int("pending", pending),
		zap.Bool("new_arrivals", notifyStaff),
	)

	if !notifyStaff {
		return
	}
	if err := l.notifier.Notify(context.Background(), notify.NewOrderArrived()); err != nil {
		l.lg.Warn("New order notification failed", zap.Error(err))
	}
}

// onFeedError surfaces a broken feed to connected clients and terminates Run.
func (l *Loop) onFeedError(err error) {
	l.lg.Error("Order feed broken", zap.Error(err))
	l.hub.FeedError(err.Error())

	select {
	case l.feedErr <- err:
	default:
	}
}
