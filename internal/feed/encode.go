package feed

import (
	"time"

	"github.com/go-faster/jx"

	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/notify"
)

// EncodeLineItem writes one line item. Sugar/ice/aloe keys appear only for
// customizable items; their absence means "not applicable", not zero.
func EncodeLineItem(e *jx.Encoder, li order.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(li.ID) })
		e.Field("itemId", func(e *jx.Encoder) { e.Str(li.MenuID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(li.Name) })
		e.Field("basePrice", func(e *jx.Encoder) { e.RawStr(li.BasePrice.String()) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(li.Quantity) })
		if li.Custom != nil {
			e.Field("sugar", func(e *jx.Encoder) { e.Int(li.Custom.Sugar) })
			e.Field("ice", func(e *jx.Encoder) { e.Int(li.Custom.Ice) })
			e.Field("aloe", func(e *jx.Encoder) { e.Bool(li.Custom.Aloe) })
		}
		e.Field("totalPrice", func(e *jx.Encoder) { e.RawStr(li.Total.String()) })
	})
}

// EncodeOrder writes a full order document.
func EncodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, li := range o.Items {
					EncodeLineItem(e, li)
				}
			})
		})
		e.Field("totalAmount", func(e *jx.Encoder) { e.RawStr(o.TotalAmount.String()) })
		e.Field("orderTime", func(e *jx.Encoder) { e.Str(o.OrderTime.Format(time.RFC3339)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
	})
}

// EncodeOrders encodes a snapshot as a JSON array, newest first as delivered
// by the repository.
func EncodeOrders(orders []order.Order) []byte {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, o := range orders {
			EncodeOrder(e, o)
		}
	})
	return e.Bytes()
}

// EncodeNotification encodes a notification event payload.
func EncodeNotification(n notify.Notification) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("title", func(e *jx.Encoder) { e.Str(n.Title) })
		e.Field("body", func(e *jx.Encoder) { e.Str(n.Body) })
		e.Field("tag", func(e *jx.Encoder) { e.Str(n.Tag) })
	})
	return e.Bytes()
}
