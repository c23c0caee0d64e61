package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	offerrepo "storefront/internal/repository/offer"
	productrepo "storefront/internal/repository/product"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(n int) *int { return &n }

// Apply inserts basic seed data for manual testing. It is idempotent via
// the repositories' upserts.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := categoryrepo.NewPostgres(pool)
	products := productrepo.NewPostgres(pool)
	offers := offerrepo.NewPostgres(pool)

	for _, c := range []domain.Category{
		{Key: "coffee", Name: "Coffee", Slug: "coffee"},
		{Key: "equipment", Name: "Equipment", Slug: "equipment"},
	} {
		if _, err := categories.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
	}

	seedProducts := []domain.Product{
		{
			Key:         "house-blend",
			Name:        "House Blend",
			Description: "Medium roast, chocolate and hazelnut notes",
			CategoryKey: "coffee",
			BasePrice:   dec("12.50"),
			Currency:    "EUR",
			Tiers: []domain.PriceTier{
				{MinQuantity: 1, MaxQuantity: intPtr(5), DiscountPercent: decimal.Zero},
				{MinQuantity: 6, MaxQuantity: intPtr(11), DiscountPercent: dec("5")},
				{MinQuantity: 12, DiscountPercent: dec("12")},
			},
			Variants: []domain.Variant{
				{SKU: "HB-250", Name: "250g", PriceAdjustment: decimal.Zero},
				{SKU: "HB-1000", Name: "1kg", PriceAdjustment: dec("30")},
			},
		},
		{
			Key:         "single-origin-peru",
			Name:        "Single Origin Peru",
			Description: "Light roast, floral and citrus",
			CategoryKey: "coffee",
			BasePrice:   dec("16.00"),
			Currency:    "EUR",
			Variants: []domain.Variant{
				{SKU: "SOP-250", Name: "250g", PriceAdjustment: decimal.Zero, Tiers: []domain.PriceTier{
					{MinQuantity: 10, DiscountPercent: dec("8")},
				}},
			},
		},
		{
			Key:         "hand-grinder",
			Name:        "Hand Grinder",
			Description: "Steel burr hand grinder",
			CategoryKey: "equipment",
			BasePrice:   dec("45.00"),
			Currency:    "EUR",
		},
	}

	ids := make(map[string]string, len(seedProducts))
	for _, p := range seedProducts {
		saved, err := products.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
		ids[p.Key] = saved.ID
	}

	// Fixed ids keep repeated seed runs from stacking up duplicate offers.
	until := time.Now().AddDate(0, 1, 0)
	for _, o := range []domain.SpecialOffer{
		{
			ID:         "5f9f1d6e-0b9a-4a47-9c3a-6f3f1a2b4c01",
			ProductID:  ids["house-blend"],
			TargetSKUs: []string{"HB-1000"},
			Badge:      "Bulk deal",
			EndDate:    &until,
			IsActive:   true,
			IsFeatured: true,
		},
		{
			ID:         "5f9f1d6e-0b9a-4a47-9c3a-6f3f1a2b4c02",
			ProductID:  ids["single-origin-peru"],
			Badge:      "New arrival",
			IsActive:   true,
			IsFeatured: true,
		},
	} {
		if _, err := offers.Upsert(ctx, o); err != nil {
			return fmt.Errorf("upsert offer for %s: %w", o.ProductID, err)
		}
	}

	return nil
}
