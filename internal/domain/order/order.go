// Package order holds the order aggregate: priced line items, the status
// state machine, the repository contract, and the service implementing
// order lifecycle operations.
package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tdhoang/teahouse/internal/domain/pricing"
)

// Customization carries sugar/ice percentages and the aloe topping flag.
// It exists only on line items whose menu entry is customizable; a plain
// item carries no Customization at all rather than a zeroed one.
type Customization struct {
	Sugar int
	Ice   int
	Aloe  bool
}

// DefaultCustomization matches the ordering form defaults: 50% sugar,
// 50% ice, no topping.
func DefaultCustomization() *Customization {
	return &Customization{Sugar: 50, Ice: 50}
}

// LineItem is one priced, customized unit of a menu selection. Total is
// derived from BasePrice, Quantity and the topping flag; it is recomputed on
// every mutation and never trusted from input.
type LineItem struct {
	ID        string
	MenuID    string
	Name      string
	BasePrice decimal.Decimal
	Quantity  int
	Custom    *Customization // nil for non-customizable items
	Total     decimal.Decimal
}

// HasTopping reports whether the aloe topping applies to this line.
func (li LineItem) HasTopping() bool {
	return li.Custom != nil && li.Custom.Aloe
}

// Reprice recomputes Total from the line's current inputs.
func (li *LineItem) Reprice() {
	li.Total = pricing.Line(li.BasePrice, li.Quantity, li.HasTopping())
}

// SumTotals returns the sum of all line totals. Zero for an empty slice.
func SumTotals(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Total)
	}
	return sum
}

// Order is a persisted snapshot of a submitted cart. OrderTime is set once at
// creation and never changes; Items, TotalAmount and Status are mutated in
// place by admin actions.
type Order struct {
	ID          string
	Items       []LineItem
	TotalAmount decimal.Decimal
	OrderTime   time.Time
	Status      Status
}

// Repository defines persistence and live-feed operations for orders.
//
// Subscribe delivers a full ordered snapshot of all orders immediately and
// again after every change; it never delivers deltas. onError signals a broken
// feed — the feed is not re-established automatically, the caller must
// subscribe again. The returned stop function releases the server-side
// listener and must be called when the subscriber goes away.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateItems(ctx context.Context, id string, items []LineItem, total decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, onUpdate func([]Order), onError func(error)) (stop func(), err error)
}

// lineItemJSON is the wire/storage form of a LineItem. Sugar, ice and aloe
// keys are present only for customizable items.
type lineItemJSON struct {
	ID        string          `json:"id"`
	MenuID    string          `json:"itemId"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Quantity  int             `json:"quantity"`
	Sugar     *int            `json:"sugar,omitempty"`
	Ice       *int            `json:"ice,omitempty"`
	Aloe      *bool           `json:"aloe,omitempty"`
	Total     decimal.Decimal `json:"totalPrice"`
}

// MarshalJSON implements json.Marshaler.
func (li LineItem) MarshalJSON() ([]byte, error) {
	out := lineItemJSON{
		ID:        li.ID,
		MenuID:    li.MenuID,
		Name:      li.Name,
		BasePrice: li.BasePrice,
		Quantity:  li.Quantity,
		Total:     li.Total,
	}
	if li.Custom != nil {
		out.Sugar = &li.Custom.Sugar
		out.Ice = &li.Custom.Ice
		out.Aloe = &li.Custom.Aloe
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var in lineItemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*li = LineItem{
		ID:        in.ID,
		MenuID:    in.MenuID,
		Name:      in.Name,
		BasePrice: in.BasePrice,
		Quantity:  in.Quantity,
		Total:     in.Total,
	}
	if in.Sugar != nil || in.Ice != nil || in.Aloe != nil {
		c := Customization{}
		if in.Sugar != nil {
			c.Sugar = *in.Sugar
		}
		if in.Ice != nil {
			c.Ice = *in.Ice
		}
		if in.Aloe != nil {
			c.Aloe = *in.Aloe
		}
		li.Custom = &c
	}
	return nil
}
