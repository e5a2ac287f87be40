// Package notify abstracts the staff notification channel. Delivery is best
// effort by design: a failing channel is reported, never fatal.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notification is one staff-facing message with a routing tag.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

// NewOrderArrived is the notification emitted when a reconciliation pass
// detects freshly arrived orders. One batch of arrivals yields one event.
func NewOrderArrived() Notification {
	return Notification{
		Title: "Đơn hàng mới!",
		Body:  "Có đơn hàng mới cần xử lý",
		Tag:   "new-order",
	}
}

// Notifier delivers notifications to staff.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Log is the always-available fallback Notifier writing to the service log.
type Log struct {
	lg *zap.Logger
}

// NewLog creates a Log notifier.
func NewLog(lg *zap.Logger) *Log {
	return &Log{lg: lg}
}

// Notify implements Notifier.
func (l *Log) Notify(_ context.Context, n Notification) error {
	l.lg.Info("Notification",
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.String("tag", n.Tag),
	)
	return nil
}

// Fanout delivers to every wrapped Notifier. A failing channel never blocks
// the others; failures are logged and swallowed so notification delivery can
// degrade without ever breaking the caller.
type Fanout struct {
	lg       *zap.Logger
	channels []Notifier
}

// NewFanout creates a Fanout over the given channels.
func NewFanout(lg *zap.Logger, channels ...Notifier) *Fanout {
	return &Fanout{lg: lg, channels: channels}
}

// Notify implements Notifier.
func (f *Fanout) Notify(ctx context.Context, n Notification) error {
	for _, ch := range f.channels {
		if err := ch.Notify(ctx, n); err != nil {
			f.lg.Warn("Notification channel failed", zap.Error(err))
		}
	}
	return nil
}
