// Package handler exposes the ordering API over HTTP: the menu catalog,
// order lifecycle operations, and the live admin feed.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tdhoang/teahouse/internal/domain/menu"
	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/feed"
)

// OrderService is the slice of the order service the handlers need.
type OrderService interface {
	Place(ctx context.Context, items []order.ItemInput) (*order.Order, error)
	List(ctx context.Context, filter order.Status) ([]order.Order, error)
	Get(ctx context.Context, id string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id string, next order.Status) error
	UpdateItems(ctx context.Context, id string, items []order.ItemInput) (*order.Order, error)
	Delete(ctx context.Context, id string) error
}

// Feed delivers live order events to subscribers.
type Feed interface {
	Subscribe() (<-chan feed.Event, func())
}

// Handler wires the domain services into HTTP endpoints.
type Handler struct {
	menu   menu.Repository
	orders OrderService
	feed   Feed
}

// New constructs a Handler with the required domain dependencies.
func New(m menu.Repository, orders OrderService, f Feed) *Handler {
	return &Handler{
		menu:   m,
		orders: orders,
		feed:   f,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/menu", h.listMenu)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.placeOrder)
		r.Get("/feed", h.streamFeed)

		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.getOrder)
			r.Delete("/", h.deleteOrder)
			r.Post("/status", h.updateStatus)
			r.Put("/items", h.updateItems)
		})
	})

	return r
}
