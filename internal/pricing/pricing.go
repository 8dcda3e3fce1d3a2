package pricing

import (
	"github.com/warungku-app/warungku-backend/pkg/types"
)

// Quote carries the monetary fields derived from a single cart line. All
// amounts are rupiah without minor units.
type Quote struct {
	EffectiveUnitPrice int64
	LineSavings        int64
	LineTotal          int64
}

// Resolve derives the effective pricing for a cart line. A promotion whose
// discounted price exceeds the base price (or goes negative) is invalid and
// clamped to the base price, so savings are never negative and a line total
// never drops below zero.
func Resolve(line types.CartLine) Quote {
	base := line.BasePrice
	if base < 0 {
		base = 0
	}

	unit := base
	var savings int64
	if promo := line.Promotion; promo != nil {
		if promo.DiscountedPrice >= 0 && promo.DiscountedPrice <= base {
			unit = promo.DiscountedPrice
			savings = base - promo.DiscountedPrice
		}
	}

	qty := line.Quantity
	if qty < 1 {
		qty = 1
	}

	return Quote{
		EffectiveUnitPrice: unit,
		LineSavings:        savings,
		LineTotal:          unit * int64(qty),
	}
}

// Subtotal sums the line totals for every line in the snapshot. Lines with
// missing display metadata still participate using their last-known price.
func Subtotal(lines []types.CartLine) int64 {
	var total int64
	for _, line := range lines {
		total += Resolve(line).LineTotal
	}
	return total
}
