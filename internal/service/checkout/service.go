package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	productrepo "storefront/internal/repository/product"
)

var ErrUnknownShippingMethod = fmt.Errorf("unknown shipping method: %w", domain.ErrNotFound)

// Quote is a priced order summary: the cart lines repriced against the
// current catalog plus the derived totals.
type Quote struct {
	Items []domain.LineItem `json:"items"`
	domain.OrderTotal
	ShippingMethod domain.ShippingMethod `json:"shippingMethod"`
}

// Service reprices carts and derives order totals. Unit prices stored on
// cart lines are display hints; a quote always recomputes them from the
// catalog so stale carts cannot lock in old prices.
type Service struct {
	products productrepo.Repository
	shipping []domain.ShippingMethod
	vatRate  decimal.Decimal
}

func New(products productrepo.Repository, shipping []domain.ShippingMethod, vatRate decimal.Decimal) *Service {
	return &Service{
		products: products,
		shipping: shipping,
		vatRate:  vatRate,
	}
}

// ShippingMethods lists the available shipping methods.
func (s *Service) ShippingMethods() []domain.ShippingMethod {
	out := make([]domain.ShippingMethod, len(s.shipping))
	copy(out, s.shipping)
	return out
}

func (s *Service) shippingByKey(key string) (domain.ShippingMethod, bool) {
	for _, m := range s.shipping {
		if m.Key == key {
			return m, true
		}
	}
	return domain.ShippingMethod{}, false
}

// Price reprices the given cart lines against the current catalog. The
// variant tier schedule overrides the product schedule; each line's
// quantity picks its own tier.
func (s *Service) Price(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
	out := make([]domain.LineItem, len(items))
	for i, li := range items {
		p, err := s.products.GetByID(ctx, li.ProductID)
		if err != nil {
			return nil, fmt.Errorf("price line %s: %w", li.ProductID, err)
		}

		adjustment := decimal.Zero
		tiers := p.Tiers
		if li.VariantSKU != "" {
			v, ok := p.VariantBySKU(li.VariantSKU)
			if !ok {
				return nil, fmt.Errorf("price line %s: variant %s: %w", li.ProductID, li.VariantSKU, domain.ErrNotFound)
			}
			adjustment = v.PriceAdjustment
			if len(v.Tiers) > 0 {
				tiers = v.Tiers
			}
		}

		li.UnitPrice = pricing.UnitPrice(li.Quantity, p.BasePrice, tiers, adjustment)
		out[i] = li
	}
	return out, nil
}

// QuoteOrder reprices the cart and derives the order total for the chosen
// shipping method.
func (s *Service) QuoteOrder(ctx context.Context, items []domain.LineItem, shippingKey string) (*Quote, error) {
	method, ok := s.shippingByKey(shippingKey)
	if !ok {
		return nil, ErrUnknownShippingMethod
	}

	priced, err := s.Price(ctx, items)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Items:          priced,
		OrderTotal:     pricing.Quote(pricing.Subtotal(priced), method.Cost, s.vatRate),
		ShippingMethod: method,
	}, nil
}
