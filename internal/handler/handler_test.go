package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdhoang/teahouse/internal/domain/menu"
	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/feed"
)

type stubMenu struct {
	items []menu.Item
	err   error
}

func (s *stubMenu) List(context.Context) ([]menu.Item, error) {
	return s.items, s.err
}

func (s *stubMenu) GetByIDs(_ context.Context, ids []string) ([]menu.Item, error) {
	var out []menu.Item
	for _, it := range s.items {
		for _, id := range ids {
			if it.ID == id {
				out = append(out, it)
			}
		}
	}
	return out, s.err
}

type stubOrders struct {
	placeFn        func(ctx context.Context, items []order.ItemInput) (*order.Order, error)
	listFn         func(ctx context.Context, filter order.Status) ([]order.Order, error)
	getFn          func(ctx context.Context, id string) (*order.Order, error)
	updateStatusFn func(ctx context.Context, id string, next order.Status) error
	updateItemsFn  func(ctx context.Context, id string, items []order.ItemInput) (*order.Order, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (s *stubOrders) Place(ctx context.Context, items []order.ItemInput) (*order.Order, error) {
	return s.placeFn(ctx, items)
}

func (s *stubOrders) List(ctx context.Context, filter order.Status) ([]order.Order, error) {
	return s.listFn(ctx, filter)
}

func (s *stubOrders) Get(ctx context.Context, id string) (*order.Order, error) {
	return s.getFn(ctx, id)
}

func (s *stubOrders) UpdateStatus(ctx context.Context, id string, next order.Status) error {
	return s.updateStatusFn(ctx, id, next)
}

func (s *stubOrders) UpdateItems(ctx context.Context, id string, items []order.ItemInput) (*order.Order, error) {
	return s.updateItemsFn(ctx, id, items)
}

func (s *stubOrders) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func sampleOrder() *order.Order {
	li := order.LineItem{
		ID:        "line-1",
		MenuID:    "tra-chanh",
		Name:      "Trà Chanh",
		BasePrice: decimal.NewFromInt(25000),
		Quantity:  2,
		Custom:    &order.Customization{Sugar: 50, Ice: 50, Aloe: true},
	}
	li.Reprice()
	return &order.Order{
		ID:          "ord-1",
		Items:       []order.LineItem{li},
		TotalAmount: li.Total,
		OrderTime:   time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
		Status:      order.StatusNew,
	}
}

func serve(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestListMenu(t *testing.T) {
	h := New(&stubMenu{items: menu.Default()}, &stubOrders{}, feed.NewHub())

	rec := serve(t, h, http.MethodGet, "/menu", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `"id":"tra-da"`)
	assert.Contains(t, body, `"basePrice":30000`)
	assert.Contains(t, body, `"hasCustomization":true`)
}

func TestPlaceOrder(t *testing.T) {
	var got []order.ItemInput
	orders := &stubOrders{
		placeFn: func(_ context.Context, items []order.ItemInput) (*order.Order, error) {
			got = items
			return sampleOrder(), nil
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodPost, "/orders",
		`{"items":[{"itemId":"tra-chanh","quantity":2,"sugar":70,"aloe":true},{"itemId":"tra-da","quantity":1}]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, got, 2)

	assert.Equal(t, "tra-chanh", got[0].MenuID)
	assert.Equal(t, 2, got[0].Quantity)
	require.NotNil(t, got[0].Custom)
	assert.Equal(t, 70, got[0].Custom.Sugar)
	assert.Equal(t, 50, got[0].Custom.Ice, "unspecified ice keeps the form default")
	assert.True(t, got[0].Custom.Aloe)

	assert.Equal(t, "tra-da", got[1].MenuID)
	assert.Nil(t, got[1].Custom, "no customization keys means no customization")

	assert.Contains(t, rec.Body.String(), `"totalPrice":60000`)
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	orders := &stubOrders{
		placeFn: func(context.Context, []order.ItemInput) (*order.Order, error) {
			return nil, order.ErrEmptyItems
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodPost, "/orders", `{"items":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	orders := &stubOrders{
		placeFn: func(context.Context, []order.ItemInput) (*order.Order, error) {
			return nil, &order.UnknownItemError{MenuID: "ghost"}
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodPost, "/orders", `{"items":[{"itemId":"ghost","quantity":1}]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost")
}

func TestPlaceOrderMalformedBody(t *testing.T) {
	h := New(&stubMenu{}, &stubOrders{}, feed.NewHub())

	rec := serve(t, h, http.MethodPost, "/orders", `{"items":[`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersStatusFilter(t *testing.T) {
	var gotFilter order.Status
	orders := &stubOrders{
		listFn: func(_ context.Context, filter order.Status) ([]order.Order, error) {
			gotFilter = filter
			return []order.Order{*sampleOrder()}, nil
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodGet, "/orders?status=processing", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.StatusProcessing, gotFilter)
	assert.Contains(t, rec.Body.String(), `"id":"ord-1"`)
}

func TestListOrdersInvalidStatus(t *testing.T) {
	h := New(&stubMenu{}, &stubOrders{}, feed.NewHub())

	rec := serve(t, h, http.MethodGet, "/orders?status=shipped", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	orders := &stubOrders{
		getFn: func(context.Context, string) (*order.Order, error) {
			return nil, order.ErrNotFound
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodGet, "/orders/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	var gotID string
	var gotStatus order.Status
	orders := &stubOrders{
		updateStatusFn: func(_ context.Context, id string, next order.Status) error {
			gotID, gotStatus = id, next
			return nil
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodPost, "/orders/ord-1/status", `{"status":"processing"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ord-1", gotID)
	assert.Equal(t, order.StatusProcessing, gotStatus)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	orders := &stubOrders{
		updateStatusFn: func(context.Context, string, order.Status) error {
			return &order.InvalidTransitionError{From: order.StatusNew, To: order.StatusCompleted}
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodPost, "/orders/ord-1/status", `{"status":"completed"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	h := New(&stubMenu{}, &stubOrders{}, feed.NewHub())

	rec := serve(t, h, http.MethodPost, "/orders/ord-1/status", `{"status":"shipped"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateItems(t *testing.T) {
	orders := &stubOrders{
		updateItemsFn: func(_ context.Context, id string, items []order.ItemInput) (*order.Order, error) {
			require.Equal(t, "ord-1", id)
			require.Len(t, items, 1)
			return sampleOrder(), nil
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodPut, "/orders/ord-1/items",
		`{"items":[{"itemId":"tra-chanh","quantity":2,"aloe":true}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalPrice":60000`)
}

func TestUpdateItemsEmptyDeletesOrder(t *testing.T) {
	orders := &stubOrders{
		updateItemsFn: func(context.Context, string, []order.ItemInput) (*order.Order, error) {
			return nil, nil
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodPut, "/orders/ord-1/items", `{"items":[]}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteOrder(t *testing.T) {
	var gotID string
	orders := &stubOrders{
		deleteFn: func(_ context.Context, id string) error {
			gotID = id
			return nil
		},
	}
	h := New(&stubMenu{}, orders, feed.NewHub())

	rec := serve(t, h, http.MethodDelete, "/orders/ord-1", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ord-1", gotID)
}

// scriptedFeed delivers a fixed set of events and then closes, so the SSE
// handler runs to completion synchronously.
type scriptedFeed struct {
	events []feed.Event
}

func (f *scriptedFeed) Subscribe() (<-chan feed.Event, func()) {
	ch := make(chan feed.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, func() {}
}

func TestStreamFeedDeliversEvents(t *testing.T) {
	snapshot := feed.EncodeOrders([]order.Order{*sampleOrder()})
	h := New(&stubMenu{}, &stubOrders{}, &scriptedFeed{
		events: []feed.Event{{Name: feed.EventSnapshot, Data: snapshot}},
	})

	rec := serve(t, h, http.MethodGet, "/orders/feed", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: snapshot\ndata: ")
	assert.Contains(t, body, `"id":"ord-1"`)
	assert.True(t, strings.HasSuffix(body, "\n\n"), "events are terminated by a blank line")
}

func TestStreamFeedHubIntegration(t *testing.T) {
	hub := feed.NewHub()
	hub.Snapshot([]order.Order{*sampleOrder()})

	events, cancel := hub.Subscribe()
	defer cancel()

	select {
	case ev := <-events:
		assert.Equal(t, feed.EventSnapshot, ev.Name)
		assert.Contains(t, string(ev.Data), `"id":"ord-1"`)
	case <-time.After(time.Second):
		t.Fatal("retained snapshot was not replayed to a late subscriber")
	}
}
