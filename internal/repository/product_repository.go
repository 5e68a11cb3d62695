package repository

import (
	"context"
	"fmt"

	"foodcart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `
	p.id, p.name, p.price, p.image, p.special_status, p.description,
	c.id, c.name
`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// ListAll retrieves every product with its category, ordered by name.
func (r *productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN product_categories c ON c.id = p.category_id
		ORDER BY p.name, p.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return r.collect(rows)
}

// ListAvailable retrieves products carried by at least one restaurant
// with availability set.
func (r *productRepository) ListAvailable(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN product_categories c ON c.id = p.category_id
		WHERE EXISTS (
			SELECT 1
			FROM restaurant_menu_items mi
			WHERE mi.product_id = p.id AND mi.availability
		)
		ORDER BY p.name, p.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query available products")
		return nil, fmt.Errorf("failed to query available products: %w", err)
	}

	return r.collect(rows)
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN product_categories c ON c.id = p.category_id
		WHERE p.id = ANY($1)
		ORDER BY p.name, p.id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	return r.collect(rows)
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			p            model.Product
			categoryID   *int64
			categoryName *string
		)
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Image,
			&p.SpecialStatus,
			&p.Description,
			&categoryID,
			&categoryName,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if categoryID != nil && categoryName != nil {
			p.Category = &model.ProductCategory{ID: *categoryID, Name: *categoryName}
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
