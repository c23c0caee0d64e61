package wholesale

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, req domain.WholesaleRequest) (*domain.WholesaleRequest, error)
	List(ctx context.Context) ([]domain.WholesaleRequest, error)
}
