package repository

import (
	"context"
	"fmt"

	"foodcart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// menuRepository implements MenuRepository using PostgreSQL.
type menuRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

// RestaurantsStockingAll returns restaurants whose count of available menu
// entries for the product set equals the size of the set. Duplicated IDs are
// counted once.
func (r *menuRepository) RestaurantsStockingAll(ctx context.Context, productIDs []int64) ([]model.RestaurantCandidate, error) {
	ids := uniqueIDs(productIDs)

	// With an empty set the zero-count condition holds for every restaurant
	// that has a menu at all.
	query := `
		SELECT r.id, r.name, r.address
		FROM restaurants r
		JOIN restaurant_menu_items mi ON mi.restaurant_id = r.id
		GROUP BY r.id, r.name, r.address
	`
	args := []any{}
	if len(ids) > 0 {
		query = `
			SELECT r.id, r.name, r.address
			FROM restaurants r
			JOIN restaurant_menu_items mi ON mi.restaurant_id = r.id
			WHERE mi.availability AND mi.product_id = ANY($1)
			GROUP BY r.id, r.name, r.address
			HAVING COUNT(DISTINCT mi.product_id) = $2
		`
		args = append(args, ids, len(ids))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Int("product_count", len(ids)).Msg("failed to query stocking restaurants")
		return nil, fmt.Errorf("failed to query stocking restaurants: %w", err)
	}
	defer rows.Close()

	candidates := []model.RestaurantCandidate{}
	for rows.Next() {
		var c model.RestaurantCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Address); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan restaurant candidate")
			return nil, fmt.Errorf("failed to scan restaurant candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating restaurant candidates")
		return nil, fmt.Errorf("error iterating restaurant candidates: %w", err)
	}

	r.logger.Debug().
		Int("product_count", len(ids)).
		Int("restaurant_count", len(candidates)).
		Msg("resolved restaurants stocking all products")

	return candidates, nil
}

// ListAll retrieves every menu entry.
func (r *menuRepository) ListAll(ctx context.Context) ([]model.MenuEntry, error) {
	query := `
		SELECT id, restaurant_id, product_id, availability
		FROM restaurant_menu_items
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query menu entries")
		return nil, fmt.Errorf("failed to query menu entries: %w", err)
	}
	defer rows.Close()

	entries := []model.MenuEntry{}
	for rows.Next() {
		var e model.MenuEntry
		if err := rows.Scan(&e.ID, &e.RestaurantID, &e.ProductID, &e.Availability); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu entry")
			return nil, fmt.Errorf("failed to scan menu entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu entries")
		return nil, fmt.Errorf("error iterating menu entries: %w", err)
	}

	return entries, nil
}

// uniqueIDs drops duplicates while keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
