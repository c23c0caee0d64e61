package offer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const selectColumns = `id::text, product_id::text, target_skus, badge, starts_at, ends_at, is_active, is_featured, created_at`

func (r *postgresRepo) List(ctx context.Context) ([]domain.SpecialOffer, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+selectColumns+`
FROM special_offers
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOffers(rows)
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID string) ([]domain.SpecialOffer, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+selectColumns+`
FROM special_offers
WHERE product_id = $1
ORDER BY created_at ASC
`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOffers(rows)
}

func (r *postgresRepo) Upsert(ctx context.Context, o domain.SpecialOffer) (*domain.SpecialOffer, error) {
	targets := o.TargetSKUs
	if targets == nil {
		targets = []string{}
	}

	const q = `
INSERT INTO special_offers (id, product_id, target_skus, badge, starts_at, ends_at, is_active, is_featured)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET target_skus = EXCLUDED.target_skus,
    badge = EXCLUDED.badge,
    starts_at = EXCLUDED.starts_at,
    ends_at = EXCLUDED.ends_at,
    is_active = EXCLUDED.is_active,
    is_featured = EXCLUDED.is_featured
RETURNING ` + selectColumns + `
`
	rows, err := r.pool.Query(ctx, q, o.ID, o.ProductID, targets, o.Badge, o.StartDate, o.EndDate, o.IsActive, o.IsFeatured)
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
	out, err := scanOffer(rows)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func scanOffers(rows pgx.Rows) ([]domain.SpecialOffer, error) {
	var out []domain.SpecialOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOffer(row pgx.Row) (domain.SpecialOffer, error) {
	var o domain.SpecialOffer
	if err := row.Scan(
		&o.ID,
		&o.ProductID,
		&o.TargetSKUs,
		&o.Badge,
		&o.StartDate,
		&o.EndDate,
		&o.IsActive,
		&o.IsFeatured,
		&o.CreatedAt,
	); err != nil {
		return domain.SpecialOffer{}, err
	}
	return o, nil
}
