package geo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"foodcart/internal/geocoder"
	"foodcart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, address string) (*Entry, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entry), args.Error(1)
}

func (m *MockCache) Put(ctx context.Context, entry Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockClient is a mock implementation of geocoder.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Geocode(ctx context.Context, address string) (model.Coordinates, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(model.Coordinates), args.Error(1)
}

// memoryCache keeps every Put so tests can count writes.
type memoryCache struct {
	entries []Entry
}

func (c *memoryCache) Get(_ context.Context, address string) (*Entry, error) {
	for i := range c.entries {
		if c.entries[i].Address == address {
			e := c.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (c *memoryCache) Put(_ context.Context, entry Entry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func TestResolver_CacheHitSkipsProvider(t *testing.T) {
	ctx := context.Background()
	cache := new(MockCache)
	client := new(MockClient)

	stored := model.Coordinates{Lat: 55.75, Lon: 37.62}
	cache.On("Get", ctx, "Moscow").Return(&Entry{Address: "Moscow", Coordinates: &stored}, nil)

	resolver := NewResolver(cache, client, zerolog.Nop())
	coords, err := resolver.Resolve(ctx, "Moscow")

	require.NoError(t, err)
	assert.Equal(t, stored, coords)
	client.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestResolver_MissWritesOnceThenHits(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{}
	client := new(MockClient)

	want := model.Coordinates{Lat: 59.93, Lon: 30.31}
	client.On("Geocode", ctx, "Saint Petersburg").Return(want, nil).Once()

	resolver := NewResolver(cache, client, zerolog.Nop())

	first, err := resolver.Resolve(ctx, "Saint Petersburg")
	require.NoError(t, err)
	assert.Equal(t, want, first)
	require.Len(t, cache.entries, 1)
	require.NotNil(t, cache.entries[0].Coordinates)
	assert.False(t, cache.entries[0].QueriedAt.IsZero())

	second, err := resolver.Resolve(ctx, "Saint Petersburg")
	require.NoError(t, err)
	assert.Equal(t, want, second)
	assert.Len(t, cache.entries, 1)

	client.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestResolver_ProviderFailureCachesNotFound(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{}
	client := new(MockClient)

	client.On("Geocode", ctx, "Atlantis").
		Return(model.Coordinates{}, fmt.Errorf("%w: no places found", geocoder.ErrProvider)).Once()

	resolver := NewResolver(cache, client, zerolog.Nop())

	_, err := resolver.Resolve(ctx, "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
	require.Len(t, cache.entries, 1)
	assert.Nil(t, cache.entries[0].Coordinates)

	_, err = resolver.Resolve(ctx, "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)

	client.AssertNumberOfCalls(t, "Geocode", 1)
	assert.Len(t, cache.entries, 1)
}

func TestResolver_CacheReadErrorTreatedAsMiss(t *testing.T) {
	ctx := context.Background()
	cache := new(MockCache)
	client := new(MockClient)

	want := model.Coordinates{Lat: 1, Lon: 2}
	cache.On("Get", ctx, "Kazan").Return(nil, errors.New("connection refused"))
	cache.On("Put", ctx, mock.MatchedBy(func(e Entry) bool {
		return e.Address == "Kazan" && e.Coordinates != nil && *e.Coordinates == want
	})).Return(nil)
	client.On("Geocode", ctx, "Kazan").Return(want, nil)

	coords, err := NewResolver(cache, client, zerolog.Nop()).Resolve(ctx, "Kazan")

	require.NoError(t, err)
	assert.Equal(t, want, coords)
	cache.AssertExpectations(t)
}

func TestResolver_CacheWriteErrorKeepsOutcome(t *testing.T) {
	ctx := context.Background()
	cache := new(MockCache)
	client := new(MockClient)

	want := model.Coordinates{Lat: 3, Lon: 4}
	cache.On("Get", ctx, "Omsk").Return(nil, nil)
	cache.On("Put", ctx, mock.Anything).Return(errors.New("disk full"))
	client.On("Geocode", ctx, "Omsk").Return(want, nil)

	coords, err := NewResolver(cache, client, zerolog.Nop()).Resolve(ctx, "Omsk")

	require.NoError(t, err)
	assert.Equal(t, want, coords)
}

func TestResolver_CancelledContextIsNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cache := new(MockCache)
	client := new(MockClient)
	cache.On("Get", ctx, "Tula").Return(nil, nil)
	client.On("Geocode", ctx, "Tula").Return(model.Coordinates{}, fmt.Errorf("%w: request failed: %v", geocoder.ErrProvider, context.Canceled))

	_, err := NewResolver(cache, client, zerolog.Nop()).Resolve(ctx, "Tula")

	assert.ErrorIs(t, err, context.Canceled)
	cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestPostgresCache_RoundTripsThroughLocations(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLocationRepository{}
	cache := NewPostgresCache(repo)

	require.NoError(t, cache.Put(ctx, Entry{Address: "Sochi", Coordinates: &model.Coordinates{Lat: 43.6, Lon: 39.7}, QueriedAt: time.Now()}))
	require.NoError(t, cache.Put(ctx, Entry{Address: "Nowhere", QueriedAt: time.Now()}))

	hit, err := cache.Get(ctx, "Sochi")
	require.NoError(t, err)
	require.NotNil(t, hit)
	require.NotNil(t, hit.Coordinates)
	assert.Equal(t, 43.6, hit.Coordinates.Lat)

	negative, err := cache.Get(ctx, "Nowhere")
	require.NoError(t, err)
	require.NotNil(t, negative)
	assert.Nil(t, negative.Coordinates)

	miss, err := cache.Get(ctx, "Unknown")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

type fakeLocationRepository struct {
	rows []model.Location
}

func (r *fakeLocationRepository) GetByAddress(_ context.Context, address string) (*model.Location, error) {
	for i := range r.rows {
		if r.rows[i].Address == address {
			loc := r.rows[i]
			return &loc, nil
		}
	}
	return nil, nil
}

func (r *fakeLocationRepository) Create(_ context.Context, location *model.Location) error {
	location.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, *location)
	return nil
}
