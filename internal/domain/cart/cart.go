// Package cart implements the customer-side cart: an ordered collection of
// priced line items persisted through a Storage after every mutation.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tdhoang/teahouse/internal/domain/menu"
	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/domain/pricing"
)

// Storage is the cart's durability mechanism: one snapshot of the full item
// sequence, read once at startup and rewritten after every mutation.
type Storage interface {
	Load() ([]order.LineItem, error)
	Save(items []order.LineItem) error
}

// Store owns a single customer's cart. It is not safe for concurrent use;
// each client session owns exactly one Store.
//
// Every mutating operation persists the full cart before returning, so
// durable state always matches in-memory state at the point a call succeeds.
type Store struct {
	catalog map[string]menu.Item
	storage Storage
	items   []order.LineItem
	newID   func() string
}

// NewStore creates a Store over the given menu and storage, loading any
// previously persisted cart.
func NewStore(catalog []menu.Item, storage Storage) (*Store, error) {
	items, err := storage.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	byID := make(map[string]menu.Item, len(catalog))
	for _, m := range catalog {
		byID[m.ID] = m
	}

	return &Store{
		catalog: byID,
		storage: storage,
		items:   items,
		newID:   func() string { return uuid.New().String() },
	}, nil
}

// Add constructs a line item for the given menu selection, prices it, appends
// it to the cart, and persists. Quantity is clamped to at least 1. The
// customization is honored only for customizable items; a customizable item
// without explicit choices gets the form defaults (50/50, no topping).
func (s *Store) Add(menuID string, quantity int, custom *order.Customization) (order.LineItem, error) {
	m, ok := s.catalog[menuID]
	if !ok {
		return order.LineItem{}, errors.Wrapf(menu.ErrNotFound, "add %q", menuID)
	}
	if quantity < 1 {
		quantity = 1
	}

	var c *order.Customization
	if m.HasCustomization {
		if custom != nil {
			cp := *custom
			c = &cp
		} else {
			c = order.DefaultCustomization()
		}
	}

	li := order.LineItem{
		ID:        s.newID(),
		MenuID:    m.ID,
		Name:      m.Name,
		BasePrice: m.BasePrice,
		Quantity:  quantity,
		Custom:    c,
	}
	li.Total = pricing.Line(li.BasePrice, li.Quantity, li.HasTopping())

	s.items = append(s.items, li)
	if err := s.persist(); err != nil {
		return order.LineItem{}, err
	}
	return li, nil
}

// UpdateQuantity sets a line's quantity and reprices it. A quantity of zero
// or less removes the line. Unknown ids are a silent no-op.
func (s *Store) UpdateQuantity(id string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(id)
	}

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items[i].Quantity = quantity
		s.items[i].Reprice()
		return s.persist()
	}
	return nil
}

// Remove deletes a line by id, preserving the order of the rest. Unknown ids
// are a silent no-op.
func (s *Store) Remove(id string) error {
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return s.persist()
	}
	return nil
}

// Items returns a copy of the cart's line items in insertion order.
func (s *Store) Items() []order.LineItem {
	out := make([]order.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of line items in the cart.
func (s *Store) Len() int {
	return len(s.items)
}

// Total returns the sum of all line totals, zero for an empty cart.
func (s *Store) Total() decimal.Decimal {
	return order.SumTotals(s.items)
}

// Clear empties the cart and persists. Called only after a successful order
// submission.
func (s *Store) Clear() error {
	s.items = nil
	return s.persist()
}

func (s *Store) persist() error {
	if err := s.storage.Save(s.items); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}
