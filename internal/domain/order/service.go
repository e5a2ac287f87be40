package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tdhoang/teahouse/internal/domain/menu"
	"github.com/tdhoang/teahouse/internal/domain/pricing"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems = errors.New("items required")
	ErrNotFound   = errors.New("order not found")
)

// UnknownItemError indicates a submitted line references a menu item that
// does not exist.
type UnknownItemError struct {
	MenuID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("menu item %s not found", e.MenuID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	MenuID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s", e.MenuID)
}

// InvalidTransitionError indicates a status change outside the exposed
// action set.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// ItemInput is one requested line: a menu reference, a quantity, and an
// optional customization. Prices are never part of the input; the service
// looks them up and recomputes totals itself.
type ItemInput struct {
	MenuID   string
	Quantity int
	Custom   *Customization
}

// Service implements the order lifecycle on top of the menu catalog and the
// order repository.
type Service struct {
	menu   menu.Repository
	orders Repository
	now    func() time.Time
	newID  func() string
}

// NewService creates an order Service with the required dependencies.
func NewService(m menu.Repository, orders Repository) *Service {
	return &Service{
		menu:   m,
		orders: orders,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Place validates the submitted items, prices them from the menu, and
// persists a new order in status "new". The order time is set once here and
// never changes afterwards.
func (s *Service) Place(ctx context.Context, items []ItemInput) (*Order, error) {
	lines, total, err := s.buildLines(ctx, items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:          s.newID(),
		Items:       lines,
		TotalAmount: total,
		OrderTime:   s.now().UTC(),
		Status:      StatusNew,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// List returns all orders, newest first. A non-empty filter restricts the
// result to orders in that status.
func (s *Service) List(ctx context.Context, filter Status) ([]Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if filter == "" {
		return all, nil
	}

	filtered := make([]Order, 0, len(all))
	for _, o := range all {
		if o.Status == filter {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// UpdateStatus moves an order to the next status. Only single-step
// forward/backward moves are allowed; anything else (skipping ahead, going
// back to "new") is rejected with InvalidTransitionError before any write.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) error {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: o.Status, To: next}
	}
	return s.orders.UpdateStatus(ctx, id, next)
}

// UpdateItems replaces an order's line items with freshly priced ones and
// recomputes the total. An empty item list is equivalent to deleting the
// order: no order with no items ever persists. The returned order is nil
// when the update resulted in a delete.
func (s *Service) UpdateItems(ctx context.Context, id string, items []ItemInput) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		if err := s.orders.Delete(ctx, id); err != nil {
			return nil, errors.Wrap(err, "delete emptied order")
		}
		return nil, nil
	}

	lines, total, err := s.buildLines(ctx, items)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateItems(ctx, id, lines, total); err != nil {
		return nil, errors.Wrap(err, "update order items")
	}

	o.Items = lines
	o.TotalAmount = total
	return o, nil
}

// Delete removes an order entirely.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// buildLines validates inputs, fetches the referenced menu items in one
// batch, and returns priced line items plus their sum.
func (s *Service) buildLines(ctx context.Context, items []ItemInput) ([]LineItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, ErrEmptyItems
	}

	ids := make([]string, len(items))
	for i, in := range items {
		if in.Quantity <= 0 {
			return nil, decimal.Zero, &InvalidQuantityError{MenuID: in.MenuID}
		}
		ids[i] = in.MenuID
	}

	fetched, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "get menu items")
	}
	byID := make(map[string]menu.Item, len(fetched))
	for _, m := range fetched {
		byID[m.ID] = m
	}

	lines := make([]LineItem, len(items))
	for i, in := range items {
		m, ok := byID[in.MenuID]
		if !ok {
			return nil, decimal.Zero, &UnknownItemError{MenuID: in.MenuID}
		}

		var custom *Customization
		if m.HasCustomization {
			if in.Custom != nil {
				c := *in.Custom
				custom = &c
			} else {
				custom = DefaultCustomization()
			}
		}

		li := LineItem{
			ID:        s.newID(),
			MenuID:    m.ID,
			Name:      m.Name,
			BasePrice: m.BasePrice,
			Quantity:  in.Quantity,
			Custom:    custom,
		}
		li.Total = pricing.Line(li.BasePrice, li.Quantity, li.HasTopping())
		lines[i] = li
	}

	return lines, SumTotals(lines), nil
}
