package wholesale

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

func (r *postgresRepo) Create(ctx context.Context, req domain.WholesaleRequest) (*domain.WholesaleRequest, error) {
	keys := req.ProductKeys
	if keys == nil {
		keys = []string{}
	}

	const q = `
INSERT INTO wholesale_requests (company_name, contact_name, email, phone, message, product_keys)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text, company_name, contact_name, email, phone, message, product_keys, created_at
`
	var out domain.WholesaleRequest
	if err := r.pool.QueryRow(ctx, q, req.CompanyName, req.ContactName, req.Email, req.Phone, req.Message, keys).Scan(
		&out.ID,
		&out.CompanyName,
		&out.ContactName,
		&out.Email,
		&out.Phone,
		&out.Message,
		&out.ProductKeys,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.WholesaleRequest, error) {
	const q = `
SELECT id::text, company_name, contact_name, email, phone, message, product_keys, created_at
FROM wholesale_requests
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WholesaleRequest
	for rows.Next() {
		var req domain.WholesaleRequest
		if err := rows.Scan(
			&req.ID,
			&req.CompanyName,
			&req.ContactName,
			&req.Email,
			&req.Phone,
			&req.Message,
			&req.ProductKeys,
			&req.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
