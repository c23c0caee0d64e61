// Package gueststore persists carts for sessions without an authenticated
// identity, keyed by an anonymous session id.
package gueststore

import (
	"context"

	"storefront/internal/domain"
)

type Store interface {
	// Load returns the session's cart. A missing cart yields an empty
	// slice, not an error.
	Load(ctx context.Context, sessionID string) ([]domain.LineItem, error)
	Save(ctx context.Context, sessionID string, items []domain.LineItem) error
	Clear(ctx context.Context, sessionID string) error
}
