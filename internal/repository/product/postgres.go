package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const selectColumns = `id::text, key, name, description, category_key, base_price::text, currency, tiers, variants, created_at`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+selectColumns+`
FROM products
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, `
SELECT `+selectColumns+`
FROM products
WHERE id = $1
`, id)
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Product, error) {
	return r.getOne(ctx, `
SELECT `+selectColumns+`
FROM products
WHERE key = $1
`, key)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg string) (*domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	p, err := scanProduct(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tiers, err := json.Marshal(orEmptyTiers(p.Tiers))
	if err != nil {
		return nil, fmt.Errorf("encode tiers: %w", err)
	}
	variants, err := json.Marshal(orEmptyVariants(p.Variants))
	if err != nil {
		return nil, fmt.Errorf("encode variants: %w", err)
	}

	const q = `
INSERT INTO products (key, name, description, category_key, base_price, currency, tiers, variants)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8)
ON CONFLICT (key) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    category_key = EXCLUDED.category_key,
    base_price = EXCLUDED.base_price,
    currency = EXCLUDED.currency,
    tiers = EXCLUDED.tiers,
    variants = EXCLUDED.variants
RETURNING ` + selectColumns + `
`
	rows, err := r.pool.Query(ctx, q, p.Key, p.Name, p.Description, p.CategoryKey, p.BasePrice.String(), p.Currency, tiers, variants)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("upsert returned no row")
	}
	out, err := scanProduct(rows)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p        domain.Product
		price    string
		tiers    []byte
		variants []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.Key,
		&p.Name,
		&p.Description,
		&p.CategoryKey,
		&price,
		&p.Currency,
		&tiers,
		&variants,
		&p.CreatedAt,
	); err != nil {
		return domain.Product{}, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse base price: %w", err)
	}
	p.BasePrice = parsed

	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &p.Tiers); err != nil {
			return domain.Product{}, fmt.Errorf("decode tiers: %w", err)
		}
	}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return domain.Product{}, fmt.Errorf("decode variants: %w", err)
		}
	}
	return p, nil
}

func orEmptyTiers(tiers []domain.PriceTier) []domain.PriceTier {
	if tiers == nil {
		return []domain.PriceTier{}
	}
	return tiers
}

func orEmptyVariants(variants []domain.Variant) []domain.Variant {
	if variants == nil {
		return []domain.Variant{}
	}
	return variants
}
