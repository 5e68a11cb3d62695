package geo

import (
	"context"
	"errors"
	"time"

	"foodcart/internal/geocoder"
	"foodcart/internal/metrics"
	"foodcart/internal/model"

	"github.com/rs/zerolog"
)

// ErrNotFound reports that an address has no known coordinates, either
// because the provider failed now or because an earlier failure is cached.
var ErrNotFound = errors.New("address could not be geocoded")

// Resolver is the single entry point for address to coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address string) (model.Coordinates, error)
}

type resolver struct {
	cache  Cache
	client geocoder.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewResolver creates a cache-then-geocode resolver.
func NewResolver(cache Cache, client geocoder.Client, logger zerolog.Logger) Resolver {
	return &resolver{
		cache:  cache,
		client: client,
		logger: logger.With().Str("component", "resolver").Logger(),
		now:    time.Now,
	}
}

// Resolve returns the cached coordinates for address, or queries the provider
// and caches the outcome. Cached entries never expire. Provider failures are
// cached as well and reported as ErrNotFound.
func (r *resolver) Resolve(ctx context.Context, address string) (model.Coordinates, error) {
	entry, err := r.cache.Get(ctx, address)
	switch {
	case err != nil:
		metrics.GeocodeCacheLookups.WithLabelValues(metrics.OutcomeError).Inc()
		r.logger.Warn().Err(err).Str("address", address).Msg("geocode cache read failed, treating as miss")
	case entry != nil && entry.Coordinates != nil:
		metrics.GeocodeCacheLookups.WithLabelValues(metrics.OutcomeHit).Inc()
		return *entry.Coordinates, nil
	case entry != nil:
		metrics.GeocodeCacheLookups.WithLabelValues(metrics.OutcomeNegative).Inc()
		return model.Coordinates{}, ErrNotFound
	default:
		metrics.GeocodeCacheLookups.WithLabelValues(metrics.OutcomeMiss).Inc()
	}

	coords, err := r.client.Geocode(ctx, address)
	if err != nil && ctx.Err() != nil {
		// An aborted request says nothing about the address.
		return model.Coordinates{}, ctx.Err()
	}

	entry = &Entry{Address: address, QueriedAt: r.now()}
	if err == nil {
		entry.Coordinates = &coords
	}

	if putErr := r.cache.Put(ctx, *entry); putErr != nil {
		r.logger.Error().Err(putErr).Str("address", address).Msg("failed to cache geocoding result")
	}

	if err != nil {
		return model.Coordinates{}, ErrNotFound
	}

	return coords, nil
}
