package offer

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.SpecialOffer, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.SpecialOffer, error)
	Upsert(ctx context.Context, o domain.SpecialOffer) (*domain.SpecialOffer, error)
}
