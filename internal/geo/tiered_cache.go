package geo

import (
	"context"

	"github.com/rs/zerolog"
)

// tieredCache reads the hot tier first and falls back to the durable tier.
// Durable hits are copied into the hot tier.
type tieredCache struct {
	hot     Cache
	durable Cache
	logger  zerolog.Logger
}

// NewTieredCache layers hot in front of durable. The durable tier stays the
// source of truth: writes go there first.
func NewTieredCache(hot, durable Cache, logger zerolog.Logger) Cache {
	return &tieredCache{
		hot:     hot,
		durable: durable,
		logger:  logger.With().Str("component", "geocode_cache").Logger(),
	}
}

func (c *tieredCache) Get(ctx context.Context, address string) (*Entry, error) {
	entry, err := c.hot.Get(ctx, address)
	if err != nil {
		c.logger.Warn().Err(err).Str("address", address).Msg("hot cache read failed, falling back")
	} else if entry != nil {
		return entry, nil
	}

	entry, err = c.durable.Get(ctx, address)
	if err != nil || entry == nil {
		return entry, err
	}

	if err := c.hot.Put(ctx, *entry); err != nil {
		c.logger.Warn().Err(err).Str("address", address).Msg("failed to backfill hot cache")
	}

	return entry, nil
}

func (c *tieredCache) Put(ctx context.Context, entry Entry) error {
	if err := c.durable.Put(ctx, entry); err != nil {
		return err
	}

	if err := c.hot.Put(ctx, entry); err != nil {
		c.logger.Warn().Err(err).Str("address", entry.Address).Msg("failed to write hot cache")
	}

	return nil
}
