package geo

import (
	"context"
	"time"

	"foodcart/internal/model"
	"foodcart/internal/repository"
)

// Entry is a cached geocoding outcome. Coordinates is nil when the provider
// could not resolve the address.
type Entry struct {
	Address     string             `json:"address"`
	Coordinates *model.Coordinates `json:"coordinates"`
	QueriedAt   time.Time          `json:"queried_at"`
}

// Cache stores geocoding outcomes keyed by the exact address string.
type Cache interface {
	// Get returns the cached entry, or nil on a miss.
	Get(ctx context.Context, address string) (*Entry, error)

	// Put records an outcome. Implementations may keep duplicates.
	Put(ctx context.Context, entry Entry) error
}

// postgresCache is the durable cache tier backed by the locations table.
type postgresCache struct {
	repo repository.LocationRepository
}

// NewPostgresCache creates a cache on top of the location repository.
func NewPostgresCache(repo repository.LocationRepository) Cache {
	return &postgresCache{repo: repo}
}

func (c *postgresCache) Get(ctx context.Context, address string) (*Entry, error) {
	loc, err := c.repo.GetByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}

	return &Entry{
		Address:     loc.Address,
		Coordinates: loc.Coordinates(),
		QueriedAt:   loc.QueriedAt,
	}, nil
}

func (c *postgresCache) Put(ctx context.Context, entry Entry) error {
	loc := &model.Location{
		Address:   entry.Address,
		QueriedAt: entry.QueriedAt,
	}
	if entry.Coordinates != nil {
		lat, lon := entry.Coordinates.Lat, entry.Coordinates.Lon
		loc.Lat = &lat
		loc.Lon = &lon
	}

	return c.repo.Create(ctx, loc)
}
