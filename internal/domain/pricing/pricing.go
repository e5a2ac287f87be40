// Package pricing computes line item prices. All amounts are Vietnamese dong
// carried as decimals with no fractional part.
package pricing

import "github.com/shopspring/decimal"

// ToppingUnitPrice is the per-unit surcharge for the aloe topping, in VND.
var ToppingUnitPrice = decimal.NewFromInt(5000)

// Line returns the total price for one line item:
// basePrice*quantity plus the aloe surcharge per unit when topping is set.
//
// Callers must pass quantity >= 1; a non-positive quantity is a removal
// signal, not a pricing request.
func Line(basePrice decimal.Decimal, quantity int, topping bool) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	total := basePrice.Mul(qty)
	if topping {
		total = total.Add(ToppingUnitPrice.Mul(qty))
	}
	return total
}
