package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

// snapshot is the stored cart document. The owner id is embedded so a read
// can detect a row whose contents belong to a different user.
type snapshot struct {
	UserID string            `json:"userId"`
	Items  []domain.LineItem `json:"items"`
}

func (r *postgresRepo) Get(ctx context.Context, userID string) ([]domain.LineItem, error) {
	const q = `
SELECT lines
FROM carts
WHERE user_id = $1
`
	var raw []byte
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if snap.UserID != "" && snap.UserID != userID {
		return nil, domain.ErrIdentityMismatch
	}
	return snap.Items, nil
}

func (r *postgresRepo) Put(ctx context.Context, userID string, items []domain.LineItem) error {
	if len(items) == 0 {
		return r.Delete(ctx, userID)
	}

	raw, err := json.Marshal(snapshot{UserID: userID, Items: items})
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}

	const q = `
INSERT INTO carts (user_id, lines, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE
SET lines = EXCLUDED.lines,
    updated_at = now()
`
	_, err = r.pool.Exec(ctx, q, userID, raw)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}
