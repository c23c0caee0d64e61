package category

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id::text, key, name, slug, created_at
FROM categories
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Key, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (key, name, slug)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE
SET name = EXCLUDED.name,
    slug = EXCLUDED.slug
RETURNING id::text, key, name, slug, created_at
`
	var out domain.Category
	if err := r.pool.QueryRow(ctx, q, c.Key, c.Name, c.Slug).Scan(
		&out.ID,
		&out.Key,
		&out.Name,
		&out.Slug,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}
