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

type locationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLocationRepository creates a new PostgreSQL-backed geocode cache store.
func NewLocationRepository(pool *pgxpool.Pool, logger zerolog.Logger) LocationRepository {
	return &locationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "location").Logger(),
	}
}

func (r *locationRepository) GetByAddress(ctx context.Context, address string) (*model.Location, error) {
	query := `
		SELECT id, address, lat, lon, queried_at
		FROM locations
		WHERE address = $1
		ORDER BY id
		LIMIT 1
	`

	var loc model.Location
	err := r.pool.QueryRow(ctx, query, address).Scan(&loc.ID, &loc.Address, &loc.Lat, &loc.Lon, &loc.QueriedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address", address).Msg("failed to query location")
		return nil, fmt.Errorf("failed to query location: %w", err)
	}

	return &loc, nil
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	query := `
		INSERT INTO locations (address, lat, lon, queried_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, location.Address, location.Lat, location.Lon, location.QueriedAt).Scan(&location.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("address", location.Address).Msg("failed to create location")
		return fmt.Errorf("failed to create location: %w", err)
	}

	r.logger.Debug().
		Int64("location_id", location.ID).
		Str("address", location.Address).
		Bool("resolved", location.Lat != nil).
		Msg("location cached")

	return nil
}
