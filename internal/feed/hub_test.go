package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/notify"
)

func sampleOrders() []order.Order {
	li := order.LineItem{
		ID:        "l1",
		MenuID:    "tra-chanh",
		Name:      "Trà Chanh",
		BasePrice: decimal.NewFromInt(25000),
		Quantity:  2,
		Custom:    &order.Customization{Sugar: 30, Ice: 70, Aloe: true},
	}
	li.Reprice()
	return []order.Order{{
		ID:          "o1",
		Items:       []order.LineItem{li},
		TotalAmount: li.Total,
		OrderTime:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Status:      order.StatusNew,
	}}
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_SnapshotReachesSubscribers(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Snapshot(sampleOrders())

	ev := recvEvent(t, ch)
	assert.Equal(t, EventSnapshot, ev.Name)

	// Payload decodes back to the same order document.
	var docs []struct {
		ID          string          `json:"id"`
		TotalAmount decimal.Decimal `json:"totalAmount"`
		OrderTime   time.Time       `json:"orderTime"`
		Status      string          `json:"status"`
		Items       []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
			Sugar    *int   `json:"sugar"`
			Aloe     *bool  `json:"aloe"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(ev.Data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "o1", docs[0].ID)
	assert.Equal(t, "new", docs[0].Status)
	assert.True(t, decimal.NewFromInt(60000).Equal(docs[0].TotalAmount))
	require.Len(t, docs[0].Items, 1)
	require.NotNil(t, docs[0].Items[0].Sugar)
	assert.Equal(t, 30, *docs[0].Items[0].Sugar)
}

func TestHub_PlainItemOmitsCustomizationKeys(t *testing.T) {
	li := order.LineItem{ID: "l1", MenuID: "tra-da", Name: "Trà Đá", BasePrice: decimal.NewFromInt(15000), Quantity: 1}
	li.Reprice()

	var m map[string]any
	data := EncodeOrders([]order.Order{{ID: "o1", Items: []order.LineItem{li}, TotalAmount: li.Total, OrderTime: time.Now(), Status: order.StatusNew}})
	var arr []map[string]any
	require.NoError(t, json.Unmarshal(data, &arr))
	items := arr[0]["items"].([]any)
	m = items[0].(map[string]any)

	_, hasSugar := m["sugar"]
	_, hasIce := m["ice"]
	_, hasAloe := m["aloe"]
	assert.False(t, hasSugar)
	assert.False(t, hasIce)
	assert.False(t, hasAloe)
}

func TestHub_LateJoinerGetsLastSnapshot(t *testing.T) {
	h := NewHub()
	h.Snapshot(sampleOrders())

	ch, cancel := h.Subscribe()
	defer cancel()

	ev := recvEvent(t, ch)
	assert.Equal(t, EventSnapshot, ev.Name)
}

func TestHub_NotifyBroadcastsNewOrderEvent(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	require.NoError(t, h.Notify(context.Background(), notify.NewOrderArrived()))

	ev := recvEvent(t, ch)
	assert.Equal(t, EventNewOrder, ev.Name)

	var n notify.Notification
	require.NoError(t, json.Unmarshal(ev.Data, &n))
	assert.Equal(t, "new-order", n.Tag)
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	// Never read: the buffer fills, then the hub must disconnect the client
	// instead of blocking.
	for range subscriberBuffer + 1 {
		h.Snapshot(sampleOrders())
	}

	assert.Zero(t, h.Subscribers())
}

func TestHub_CancelTwiceIsSafe(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	cancel()
	cancel()
	assert.Zero(t, h.Subscribers())
}
