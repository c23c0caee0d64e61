package domain

import "github.com/shopspring/decimal"

// LineKey identifies a line item within a cart. Two line items with the
// same product and variant SKU are the same line.
type LineKey struct {
	ProductID  string
	VariantSKU string
}

type LineItem struct {
	ProductID       string            `json:"productId"`
	VariantSKU      string            `json:"variantSku,omitempty"`
	Quantity        int               `json:"quantity"`
	UnitPrice       decimal.Decimal   `json:"unitPrice"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
}

func (li LineItem) Key() LineKey {
	return LineKey{ProductID: li.ProductID, VariantSKU: li.VariantSKU}
}

// OrderTotal is derived from a cart plus a shipping method. It is never
// persisted; totals are recomputed from line items on every request.
type OrderTotal struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	VATAmount    decimal.Decimal `json:"vatAmount"`
	Total        decimal.Decimal `json:"total"`
}

type ShippingMethod struct {
	Key  string          `json:"key"`
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}
