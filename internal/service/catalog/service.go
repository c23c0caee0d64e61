package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/offer"
	categoryrepo "storefront/internal/repository/category"
	offerrepo "storefront/internal/repository/offer"
	productrepo "storefront/internal/repository/product"
)

// FeaturedOffer is an active featured offer joined with its product and
// display price.
type FeaturedOffer struct {
	Offer   domain.SpecialOffer `json:"offer"`
	Product domain.Product      `json:"product"`
	Price   offer.Price         `json:"price"`
}

// Service is the read surface for the catalog. Listing failures degrade to
// empty collections so a storage outage renders an empty storefront instead
// of an error page; single-item lookups still surface their errors.
type Service struct {
	products   productrepo.Repository
	categories categoryrepo.Repository
	offers     offerrepo.Repository
	logger     *log.Logger
	now        func() time.Time
}

func New(products productrepo.Repository, categories categoryrepo.Repository, offers offerrepo.Repository, logger *log.Logger) *Service {
	return &Service{
		products:   products,
		categories: categories,
		offers:     offers,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Products(ctx context.Context) []domain.Product {
	products, err := s.products.List(ctx)
	if err != nil {
		s.logger.Printf("list products: %v", err)
		return []domain.Product{}
	}
	return products
}

func (s *Service) Categories(ctx context.Context) []domain.Category {
	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger.Printf("list categories: %v", err)
		return []domain.Category{}
	}
	return categories
}

func (s *Service) ProductByKey(ctx context.Context, key string) (*domain.Product, error) {
	return s.products.GetByKey(ctx, key)
}

func (s *Service) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// FeaturedOffers returns the active featured offers with their products and
// display prices. An offer whose product is missing is skipped.
func (s *Service) FeaturedOffers(ctx context.Context) []FeaturedOffer {
	offers, err := s.offers.List(ctx)
	if err != nil {
		s.logger.Printf("list offers: %v", err)
		return []FeaturedOffer{}
	}

	out := make([]FeaturedOffer, 0, len(offers))
	for _, o := range offer.ActiveFeatured(offers, s.now()) {
		p, err := s.products.GetByID(ctx, o.ProductID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("load product %s for offer %s: %v", o.ProductID, o.ID, err)
			}
			continue
		}
		out = append(out, FeaturedOffer{
			Offer:   o,
			Product: *p,
			Price:   offer.DisplayPrice(*p, o),
		})
	}
	return out
}

// OffersForProduct returns the offers applying to the product, optionally
// narrowed to one variant.
func (s *Service) OffersForProduct(ctx context.Context, productID, variantSKU string) []domain.SpecialOffer {
	offers, err := s.offers.ListByProduct(ctx, productID)
	if err != nil {
		s.logger.Printf("list offers for product %s: %v", productID, err)
		return []domain.SpecialOffer{}
	}

	now := s.now()
	out := make([]domain.SpecialOffer, 0, len(offers))
	for _, o := range offers {
		if offer.Applies(o, productID, variantSKU, now) {
			out = append(out, o)
		}
	}
	return out
}
