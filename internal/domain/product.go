package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceTier is one entry of a quantity-discount schedule. A nil MaxQuantity
// means the tier is open-ended. Schedules are authored non-overlapping; on
// overlap the first matching tier in declared order wins.
type PriceTier struct {
	MinQuantity     int             `json:"minQuantity"`
	MaxQuantity     *int            `json:"maxQuantity,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// Variant is a purchasable variation of a product. Its price is the product
// base price plus PriceAdjustment. A non-empty tier schedule overrides the
// product-level schedule.
type Variant struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name,omitempty"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	Tiers           []PriceTier     `json:"tiers,omitempty"`
}

type Product struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CategoryKey string          `json:"categoryKey,omitempty"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Currency    string          `json:"currency"`
	Tiers       []PriceTier     `json:"tiers,omitempty"`
	Variants    []Variant       `json:"variants,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// VariantBySKU returns the variant with the given SKU, if present.
func (p Product) VariantBySKU(sku string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.SKU == sku {
			return v, true
		}
	}
	return Variant{}, false
}
