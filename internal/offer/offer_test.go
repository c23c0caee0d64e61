package offer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestIsActiveFutureStartNeverActive(t *testing.T) {
	o := domain.SpecialOffer{IsActive: true, StartDate: timePtr(now.Add(time.Hour))}
	if IsActive(o, now) {
		t.Fatalf("offer with future start must not be active")
	}
}

func TestIsActivePastEnd(t *testing.T) {
	o := domain.SpecialOffer{IsActive: true, EndDate: timePtr(now.Add(-time.Hour))}
	if IsActive(o, now) {
		t.Fatalf("offer past its end date must not be active")
	}
}

func TestIsActiveOpenEnded(t *testing.T) {
	o := domain.SpecialOffer{IsActive: true, StartDate: timePtr(now.Add(-24 * time.Hour))}
	if !IsActive(o, now) {
		t.Fatalf("offer with past start and no end should be active")
	}
	o.IsActive = false
	if IsActive(o, now) {
		t.Fatalf("inactive flag must win inside the date window")
	}
}

func TestActiveFeatured(t *testing.T) {
	offers := []domain.SpecialOffer{
		{ID: "a", IsActive: true, IsFeatured: true},
		{ID: "b", IsActive: true, IsFeatured: false},
		{ID: "c", IsActive: true, IsFeatured: true, StartDate: timePtr(now.Add(time.Hour))},
		{ID: "d", IsActive: false, IsFeatured: true},
	}
	got := ActiveFeatured(offers, now)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only offer a, got %+v", got)
	}
}

func TestApplies(t *testing.T) {
	o := domain.SpecialOffer{ProductID: "p1", IsActive: true, TargetSKUs: []string{"SKU-A"}}

	if Applies(o, "other", "SKU-A", now) {
		t.Fatalf("must not apply to a different product")
	}
	if !Applies(o, "p1", "SKU-A", now) {
		t.Fatalf("should apply to targeted variant")
	}
	if Applies(o, "p1", "SKU-B", now) {
		t.Fatalf("must not apply to untargeted variant")
	}
	if !Applies(o, "p1", "", now) {
		t.Fatalf("should apply when no variant given")
	}

	untargeted := domain.SpecialOffer{ProductID: "p1", IsActive: true}
	if !Applies(untargeted, "p1", "SKU-B", now) {
		t.Fatalf("offer without targeting applies to every variant")
	}

	inactive := domain.SpecialOffer{ProductID: "p1", IsActive: false}
	if Applies(inactive, "p1", "", now) {
		t.Fatalf("inactive offer never applies")
	}
}

func testProduct() domain.Product {
	return domain.Product{
		ID:        "p1",
		BasePrice: dec("100"),
		Tiers:     []domain.PriceTier{{MinQuantity: 1, DiscountPercent: dec("10")}},
		Variants: []domain.Variant{
			{SKU: "SKU-A", PriceAdjustment: dec("5")},
			{SKU: "SKU-B", PriceAdjustment: dec("20"), Tiers: []domain.PriceTier{{MinQuantity: 1, DiscountPercent: dec("25")}}},
		},
	}
}

func TestDisplayPriceTargetedVariantWithOwnSchedule(t *testing.T) {
	p := testProduct()
	got := DisplayPrice(p, domain.SpecialOffer{ProductID: "p1", TargetSKUs: []string{"SKU-B"}})
	if got.SKU != "SKU-B" {
		t.Fatalf("expected SKU-B, got %s", got.SKU)
	}
	if !got.Original.Equal(dec("120")) {
		t.Fatalf("expected original 120, got %s", got.Original)
	}
	if !got.Discounted.Equal(dec("90")) {
		t.Fatalf("expected discounted 90, got %s", got.Discounted)
	}
}

func TestDisplayPriceFallsBackToFirstVariantAndProductSchedule(t *testing.T) {
	p := testProduct()
	got := DisplayPrice(p, domain.SpecialOffer{ProductID: "p1"})
	if got.SKU != "SKU-A" {
		t.Fatalf("expected first variant SKU-A, got %s", got.SKU)
	}
	if !got.Original.Equal(dec("105")) {
		t.Fatalf("expected original 105, got %s", got.Original)
	}
	// SKU-A has no schedule of its own; the product schedule applies.
	if !got.Discounted.Equal(dec("94.5")) {
		t.Fatalf("expected discounted 94.5, got %s", got.Discounted)
	}
}

func TestDisplayPriceMissingTargetSKU(t *testing.T) {
	p := testProduct()
	got := DisplayPrice(p, domain.SpecialOffer{ProductID: "p1", TargetSKUs: []string{"SKU-MISSING"}})
	if got.SKU != "SKU-A" {
		t.Fatalf("expected fallback to first variant, got %s", got.SKU)
	}
}

func TestDisplayPriceFirstTierFallbackWhenNoQuantityOneMatch(t *testing.T) {
	p := domain.Product{
		ID:        "p1",
		BasePrice: dec("50"),
		Tiers:     []domain.PriceTier{{MinQuantity: 10, DiscountPercent: dec("20")}},
		Variants:  []domain.Variant{{SKU: "SKU-A"}},
	}
	got := DisplayPrice(p, domain.SpecialOffer{ProductID: "p1"})
	if !got.Discounted.Equal(dec("40")) {
		t.Fatalf("expected first-entry fallback discount to 40, got %s", got.Discounted)
	}
}

func TestDisplayPriceNoVariantsNoTiers(t *testing.T) {
	p := domain.Product{ID: "p1", BasePrice: dec("30")}
	got := DisplayPrice(p, domain.SpecialOffer{ProductID: "p1"})
	if !got.Original.Equal(dec("30")) || !got.Discounted.Equal(dec("30")) {
		t.Fatalf("expected undiscounted base price, got %+v", got)
	}
	if !got.DiscountPercent.Equal(decimal.Zero) {
		t.Fatalf("expected zero discount percent, got %s", got.DiscountPercent)
	}
}
