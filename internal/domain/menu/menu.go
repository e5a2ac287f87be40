// Package menu defines the drink catalog offered to customers.
package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Item is a single entry on the menu. BasePrice is the per-unit price in VND.
// HasCustomization marks drinks that take sugar/ice levels and toppings.
type Item struct {
	ID               string
	Name             string
	BasePrice        decimal.Decimal
	HasCustomization bool
}

// Repository defines read operations for the menu.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]Item, error)
}

// Default returns the built-in menu. It seeds the database and serves as the
// kiosk fallback when the API is unreachable.
func Default() []Item {
	return []Item{
		{ID: "tra-da", Name: "Trà Đá", BasePrice: decimal.NewFromInt(15000)},
		{ID: "bim-bim", Name: "Bim Bim", BasePrice: decimal.NewFromInt(20000)},
		{ID: "tra-chanh", Name: "Trà Chanh", BasePrice: decimal.NewFromInt(25000), HasCustomization: true},
		{ID: "tra-quat", Name: "Trà Quất", BasePrice: decimal.NewFromInt(30000), HasCustomization: true},
	}
}
