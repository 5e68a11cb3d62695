package service

import (
	"context"
	"fmt"

	"foodcart/internal/media"
	"foodcart/internal/model"
	"foodcart/internal/repository"

	"github.com/rs/zerolog"
)

var banners = []model.Banner{
	{Title: "Burger", Src: "burger.jpg", Text: "Tasty Burger at your door step"},
	{Title: "Spices", Src: "food.jpg", Text: "All Cuisines"},
	{Title: "New York", Src: "tasty.jpg", Text: "Food is incomplete without a tasty dessert"},
}

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	images      media.URLResolver
	assets      media.URLResolver
	logger      zerolog.Logger
}

// NewProductService creates a new product service. images resolves product
// pictures, assets resolves bundled storefront files.
func NewProductService(
	productRepo repository.ProductRepository,
	images media.URLResolver,
	assets media.URLResolver,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		images:      images,
		assets:      assets,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// ListAvailable retrieves products stocked by at least one restaurant.
func (s *productService) ListAvailable(ctx context.Context) ([]model.CatalogProduct, error) {
	products, err := s.productRepo.ListAvailable(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list available products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	catalog := make([]model.CatalogProduct, len(products))
	for i, p := range products {
		image, err := s.images.URL(ctx, p.Image)
		if err != nil {
			s.logger.Error().Err(err).Int64("product_id", p.ID).Msg("failed to resolve image URL")
			return nil, fmt.Errorf("failed to resolve image for product %d: %w", p.ID, err)
		}

		catalog[i] = model.CatalogProduct{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price,
			SpecialStatus: p.SpecialStatus,
			Description:   p.Description,
			Category:      p.Category,
			Image:         image,
		}
	}

	s.logger.Debug().Int("count", len(catalog)).Msg("retrieved available products")

	return catalog, nil
}

// Banners returns the fixed storefront banners.
func (s *productService) Banners(ctx context.Context) ([]model.Banner, error) {
	out := make([]model.Banner, len(banners))
	for i, b := range banners {
		src, err := s.assets.URL(ctx, b.Src)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve banner %q: %w", b.Title, err)
		}
		b.Src = src
		out[i] = b
	}
	return out, nil
}
