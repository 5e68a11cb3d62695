package repository

import (
	"context"
	"errors"
	"fmt"

	"foodcart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type restaurantRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRestaurantRepository creates a new PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(pool *pgxpool.Pool, logger zerolog.Logger) RestaurantRepository {
	return &restaurantRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "restaurant").Logger(),
	}
}

func (r *restaurantRepository) List(ctx context.Context) ([]model.Restaurant, error) {
	query := `
		SELECT id, name, address, contact_phone
		FROM restaurants
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query restaurants")
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []model.Restaurant{}
	for rows.Next() {
		var rest model.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Address, &rest.ContactPhone); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan restaurant row")
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, rest)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating restaurant rows")
		return nil, fmt.Errorf("error iterating restaurants: %w", err)
	}

	return restaurants, nil
}

func (r *restaurantRepository) GetByID(ctx context.Context, id int64) (*model.Restaurant, error) {
	query := `
		SELECT id, name, address, contact_phone
		FROM restaurants
		WHERE id = $1
	`

	var rest model.Restaurant
	err := r.pool.QueryRow(ctx, query, id).Scan(&rest.ID, &rest.Name, &rest.Address, &rest.ContactPhone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("restaurant_id", id).Msg("restaurant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("restaurant_id", id).Msg("failed to query restaurant")
		return nil, fmt.Errorf("failed to query restaurant: %w", err)
	}

	return &rest, nil
}
