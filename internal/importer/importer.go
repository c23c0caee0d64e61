package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products. A row
// with a key starts a product; keyless continuation rows add variants and
// price tiers to the current one.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	Key         string
	Name        string
	Desc        string
	CategoryKey string
	BasePrice   string
	Currency    string

	VariantSKU        string
	VariantName       string
	VariantAdjustment string

	TierMin      string
	TierMax      string
	TierDiscount string
}

// Run parses CSV rows and upserts products grouped by product key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.Product
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current, err = newProduct(row)
			if err != nil {
				return imported, err
			}
			continue
		}

		if current == nil {
			continue
		}
		if err := applyContinuation(current, row); err != nil {
			return imported, fmt.Errorf("product %q: %w", current.Key, err)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.Key == "" || p.Name == "" || p.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", p.Key)
	}
	if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Key, err)
	}
	return nil
}

func newProduct(row *csvRow) (*domain.Product, error) {
	if row.BasePrice == "" {
		return nil, fmt.Errorf("missing base price for key %q", row.Key)
	}
	base, err := decimal.NewFromString(row.BasePrice)
	if err != nil {
		return nil, fmt.Errorf("invalid base price for key %q: %s", row.Key, row.BasePrice)
	}
	p := &domain.Product{
		Key:         row.Key,
		Name:        row.Name,
		Description: row.Desc,
		CategoryKey: row.CategoryKey,
		BasePrice:   base,
		Currency:    row.Currency,
	}
	if err := applyContinuation(p, row); err != nil {
		return nil, fmt.Errorf("product %q: %w", row.Key, err)
	}
	return p, nil
}

// applyContinuation adds the row's variant or tier data. A tier row with a
// variant SKU attaches the tier to that variant's schedule; without one it
// attaches to the product schedule.
func applyContinuation(p *domain.Product, row *csvRow) error {
	if row.VariantSKU != "" && row.TierMin == "" {
		adjustment := decimal.Zero
		if row.VariantAdjustment != "" {
			var err error
			adjustment, err = decimal.NewFromString(row.VariantAdjustment)
			if err != nil {
				return fmt.Errorf("invalid adjustment for variant %q: %s", row.VariantSKU, row.VariantAdjustment)
			}
		}
		p.Variants = append(p.Variants, domain.Variant{
			SKU:             row.VariantSKU,
			Name:            row.VariantName,
			PriceAdjustment: adjustment,
		})
		return nil
	}

	if row.TierMin == "" {
		return nil
	}
	tier, err := parseTier(row)
	if err != nil {
		return err
	}
	if row.VariantSKU == "" {
		p.Tiers = append(p.Tiers, tier)
		return nil
	}
	for vi := range p.Variants {
		if p.Variants[vi].SKU == row.VariantSKU {
			p.Variants[vi].Tiers = append(p.Variants[vi].Tiers, tier)
			return nil
		}
	}
	return fmt.Errorf("tier references unknown variant %q", row.VariantSKU)
}

func parseTier(row *csvRow) (domain.PriceTier, error) {
	min, err := strconv.Atoi(row.TierMin)
	if err != nil {
		return domain.PriceTier{}, fmt.Errorf("invalid tier min quantity: %s", row.TierMin)
	}
	tier := domain.PriceTier{MinQuantity: min, DiscountPercent: decimal.Zero}
	if row.TierMax != "" {
		max, err := strconv.Atoi(row.TierMax)
		if err != nil {
			return domain.PriceTier{}, fmt.Errorf("invalid tier max quantity: %s", row.TierMax)
		}
		tier.MaxQuantity = &max
	}
	if row.TierDiscount != "" {
		discount, err := decimal.NewFromString(row.TierDiscount)
		if err != nil {
			return domain.PriceTier{}, fmt.Errorf("invalid tier discount: %s", row.TierDiscount)
		}
		tier.DiscountPercent = discount
	}
	return tier, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		Key:               pick(record, index, "key"),
		Name:              pick(record, index, "name"),
		Desc:              pick(record, index, "description"),
		CategoryKey:       pick(record, index, "category"),
		BasePrice:         pick(record, index, "basePrice"),
		Currency:          pick(record, index, "currency"),
		VariantSKU:        pick(record, index, "variant.sku"),
		VariantName:       pick(record, index, "variant.name"),
		VariantAdjustment: pick(record, index, "variant.priceAdjustment"),
		TierMin:           pick(record, index, "tier.minQuantity"),
		TierMax:           pick(record, index, "tier.maxQuantity"),
		TierDiscount:      pick(record, index, "tier.discountPercent"),
	}
	if row.Key == "" && row.VariantSKU == "" && row.TierMin == "" {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
