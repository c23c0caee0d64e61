// Package offer resolves special-offer eligibility and display pricing.
// All functions are pure; "now" is always passed in.
package offer

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

// IsActive reports whether the offer is effective at the given time. A
// start date in the future or an end date in the past disables the offer
// regardless of its active flag.
func IsActive(o domain.SpecialOffer, now time.Time) bool {
	if o.StartDate != nil && o.StartDate.After(now) {
		return false
	}
	if o.EndDate != nil && o.EndDate.Before(now) {
		return false
	}
	return o.IsActive
}

// ActiveFeatured filters to offers that are both active and featured.
func ActiveFeatured(offers []domain.SpecialOffer, now time.Time) []domain.SpecialOffer {
	out := make([]domain.SpecialOffer, 0, len(offers))
	for _, o := range offers {
		if IsActive(o, now) && o.IsFeatured {
			out = append(out, o)
		}
	}
	return out
}

// Applies reports whether the offer covers the given product and, when a
// variant SKU is supplied and the offer targets specific variants, that
// variant. An offer without variant targeting applies to every variant of
// its product.
func Applies(o domain.SpecialOffer, productID, variantSKU string, now time.Time) bool {
	if o.ProductID != productID || !IsActive(o, now) {
		return false
	}
	if variantSKU == "" || len(o.TargetSKUs) == 0 {
		return true
	}
	for _, sku := range o.TargetSKUs {
		if sku == variantSKU {
			return true
		}
	}
	return false
}

// Price is the displayed pricing of an offer: the targeted variant's normal
// price and, when a tier discount exists, the discounted price.
type Price struct {
	SKU             string          `json:"sku,omitempty"`
	Original        decimal.Decimal `json:"original"`
	Discounted      decimal.Decimal `json:"discounted"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// DisplayPrice resolves the offer's targeted variant and derives its
// display price from the normal tier schedules. The targeted variant is the
// first of TargetSKUs present on the product, falling back to the product's
// first variant. The discount tier is the one matching quantity 1, falling
// back to the schedule's first entry; the variant schedule overrides the
// product schedule.
func DisplayPrice(p domain.Product, o domain.SpecialOffer) Price {
	variant, ok := targetVariant(p, o)
	base := p.BasePrice
	if ok {
		base = base.Add(variant.PriceAdjustment)
	}
	out := Price{SKU: variant.SKU, Original: base, Discounted: base, DiscountPercent: decimal.Zero}

	tiers := variant.Tiers
	if len(tiers) == 0 {
		tiers = p.Tiers
	}
	tier, found := displayTier(tiers)
	if !found || !tier.DiscountPercent.IsPositive() {
		return out
	}
	out.DiscountPercent = tier.DiscountPercent
	out.Discounted = base.Mul(decimal.NewFromInt(1).Sub(tier.DiscountPercent.Div(decimal.NewFromInt(100))))
	return out
}

func targetVariant(p domain.Product, o domain.SpecialOffer) (domain.Variant, bool) {
	for _, sku := range o.TargetSKUs {
		if v, ok := p.VariantBySKU(sku); ok {
			return v, true
		}
	}
	if len(p.Variants) > 0 {
		return p.Variants[0], true
	}
	return domain.Variant{}, false
}

func displayTier(tiers []domain.PriceTier) (domain.PriceTier, bool) {
	if tier, ok := pricing.TierFor(1, tiers); ok {
		return tier, true
	}
	if len(tiers) > 0 {
		return tiers[0], true
	}
	return domain.PriceTier{}, false
}
