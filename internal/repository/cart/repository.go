package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the remote cart store: one persisted cart per user id,
// written as a full snapshot. Empty carts are never stored.
type Repository interface {
	// Get returns the user's persisted line items. A missing cart is not
	// an error; it yields an empty slice.
	Get(ctx context.Context, userID string) ([]domain.LineItem, error)
	// Put replaces the user's persisted cart with the given snapshot.
	// An empty snapshot removes the cart row.
	Put(ctx context.Context, userID string, items []domain.LineItem) error
	// Delete removes the user's cart row, if any.
	Delete(ctx context.Context, userID string) error
}
