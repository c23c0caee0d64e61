// Package pricing computes unit prices under tiered-quantity discounts and
// order totals. All arithmetic is decimal and carried at full precision;
// rounding to currency display precision is the presentation layer's job.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// TierFor returns the first tier in declared order matching the quantity.
// Schedules are authored non-overlapping, so at most one tier should match;
// overlap is an authoring error and is not handled defensively.
func TierFor(quantity int, tiers []domain.PriceTier) (domain.PriceTier, bool) {
	for _, t := range tiers {
		if quantity < t.MinQuantity {
			continue
		}
		if t.MaxQuantity != nil && quantity > *t.MaxQuantity {
			continue
		}
		return t, true
	}
	return domain.PriceTier{}, false
}

// UnitPrice computes the per-unit price for a quantity: the product base
// price plus the variant adjustment, scaled by the matching tier's discount
// when one exists and its discount is positive.
//
// Negative inputs are not rejected here; callers own the non-negative
// invariants.
func UnitPrice(quantity int, basePrice decimal.Decimal, tiers []domain.PriceTier, adjustment decimal.Decimal) decimal.Decimal {
	adjusted := basePrice.Add(adjustment)
	tier, ok := TierFor(quantity, tiers)
	if !ok || !tier.DiscountPercent.IsPositive() {
		return adjusted
	}
	return adjusted.Mul(one.Sub(tier.DiscountPercent.Div(hundred)))
}

// Subtotal sums quantity times unit price over the given line items.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return total
}

// Quote derives an order total. VAT applies to subtotal plus shipping.
func Quote(subtotal, shippingCost, vatRate decimal.Decimal) domain.OrderTotal {
	vat := subtotal.Add(shippingCost).Mul(vatRate)
	return domain.OrderTotal{
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		VATAmount:    vat,
		Total:        subtotal.Add(shippingCost).Add(vat),
	}
}
