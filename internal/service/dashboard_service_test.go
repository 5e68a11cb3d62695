package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foodcart/internal/geo"
	"foodcart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dashboardMocks struct {
	restaurants *MockRestaurantRepository
	products    *MockProductRepository
	menu        *MockMenuRepository
	orders      *MockOrderRepository
	resolver    *MockResolver
}

func newDashboard(opts DashboardOptions) (DashboardService, dashboardMocks) {
	m := dashboardMocks{
		restaurants: new(MockRestaurantRepository),
		products:    new(MockProductRepository),
		menu:        new(MockMenuRepository),
		orders:      new(MockOrderRepository),
		resolver:    new(MockResolver),
	}
	svc := NewDashboardService(m.restaurants, m.products, m.menu, m.orders, m.resolver, opts, zerolog.Nop())
	return svc, m
}

func TestDashboardService_AvailabilityGrid(t *testing.T) {
	ctx := context.Background()
	svc, m := newDashboard(DashboardOptions{Workers: 2})

	m.restaurants.On("List", ctx).Return([]model.Restaurant{{ID: 10, Name: "A"}, {ID: 20, Name: "B"}}, nil)
	m.products.On("ListAll", ctx).Return([]model.Product{{ID: 1, Name: "Burger"}, {ID: 2, Name: "Soup"}}, nil)
	m.menu.On("ListAll", ctx).Return([]model.MenuEntry{
		{RestaurantID: 10, ProductID: 1, Availability: true},
		{RestaurantID: 20, ProductID: 1, Availability: false},
		{RestaurantID: 20, ProductID: 2, Availability: true},
	}, nil)

	grid, err := svc.AvailabilityGrid(ctx)

	require.NoError(t, err)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, []bool{true, false}, grid.Rows[0].Availability)
	assert.Equal(t, []bool{false, true}, grid.Rows[1].Availability)
	assert.Len(t, grid.Restaurants, 2)
}

func TestDashboardService_AvailabilityGrid_Error(t *testing.T) {
	ctx := context.Background()
	svc, m := newDashboard(DashboardOptions{Workers: 1})

	m.restaurants.On("List", ctx).Return([]model.Restaurant{}, nil)
	m.products.On("ListAll", ctx).Return(nil, errors.New("database error"))

	_, err := svc.AvailabilityGrid(ctx)

	assert.Error(t, err)
}

func TestDashboardService_Restaurants(t *testing.T) {
	ctx := context.Background()
	svc, m := newDashboard(DashboardOptions{Workers: 1})

	m.restaurants.On("List", ctx).Return([]model.Restaurant{{ID: 1, Name: "Star"}}, nil)

	got, err := svc.Restaurants(ctx)

	require.NoError(t, err)
	assert.Equal(t, "Star", got[0].Name)
}

func TestDashboardService_OrderAssignments(t *testing.T) {
	ctx := context.Background()
	svc, m := newDashboard(DashboardOptions{Workers: 2})

	first := model.Order{ID: uuid.New(), Address: "order address", Status: model.StatusProcessing}
	second := model.Order{ID: uuid.New(), Address: "unknown address", Status: model.StatusPacking}
	broken := model.Order{ID: uuid.New(), Address: "order address", Status: model.StatusDelivery}

	m.orders.On("ListOpen", ctx).Return([]model.Order{first, second, broken}, nil)
	m.orders.On("ItemsForOrders", ctx, []uuid.UUID{first.ID, second.ID, broken.ID}).Return(map[uuid.UUID][]model.OrderItem{
		first.ID: {
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("100")},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("50.5")},
		},
		second.ID: {{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("100")}},
		broken.ID: {{ProductID: 3, Quantity: 1, Price: decimal.RequireFromString("1")}},
	}, nil)

	near := model.RestaurantCandidate{ID: 1, Name: "Near", Address: "near address"}
	far := model.RestaurantCandidate{ID: 2, Name: "Far", Address: "far address"}
	lost := model.RestaurantCandidate{ID: 3, Name: "Lost", Address: "lost address"}

	m.menu.On("RestaurantsStockingAll", ctx, []int64{1, 2}).Return([]model.RestaurantCandidate{near, far, lost}, nil)
	m.menu.On("RestaurantsStockingAll", ctx, []int64{1}).Return([]model.RestaurantCandidate{near}, nil)
	m.menu.On("RestaurantsStockingAll", ctx, []int64{3}).Return(nil, errors.New("database error"))

	origin := model.Coordinates{Lat: 55.75, Lon: 37.62}
	m.resolver.On("Resolve", ctx, "order address").Return(origin, nil)
	m.resolver.On("Resolve", ctx, "unknown address").Return(model.Coordinates{}, geo.ErrNotFound)
	m.resolver.On("Resolve", ctx, "near address").Return(model.Coordinates{Lat: 55.7725, Lon: 37.62}, nil)
	m.resolver.On("Resolve", ctx, "far address").Return(model.Coordinates{Lat: 55.861, Lon: 37.62}, nil)
	m.resolver.On("Resolve", ctx, "lost address").Return(model.Coordinates{}, geo.ErrNotFound)

	assignments, err := svc.OrderAssignments(ctx)

	require.NoError(t, err)
	require.Len(t, assignments, 3)

	// Output order follows input order.
	assert.Equal(t, first.ID, assignments[0].Order.ID)
	assert.Equal(t, second.ID, assignments[1].Order.ID)
	assert.Equal(t, broken.ID, assignments[2].Order.ID)

	got := assignments[0]
	assert.True(t, decimal.RequireFromString("250.5").Equal(got.Total))
	require.Len(t, got.Candidates, 3)
	assert.Equal(t, "Lost", got.Candidates[0].Restaurant.Name)
	assert.Equal(t, "0 км", got.Candidates[0].Distance)
	assert.Equal(t, "Far", got.Candidates[1].Restaurant.Name)
	assert.Equal(t, "Near", got.Candidates[2].Restaurant.Name)
	assert.Empty(t, got.Error)

	require.Len(t, assignments[1].Candidates, 1)
	assert.Equal(t, "0 км", assignments[1].Candidates[0].Distance)

	assert.NotEmpty(t, assignments[2].Error)
	assert.Empty(t, assignments[2].Candidates)
}

func TestDashboardService_OrderAssignments_NumericSort(t *testing.T) {
	ctx := context.Background()
	svc, m := newDashboard(DashboardOptions{Workers: 1, NumericSort: true})

	order := model.Order{ID: uuid.New(), Address: "order address"}
	m.orders.On("ListOpen", ctx).Return([]model.Order{order}, nil)
	m.orders.On("ItemsForOrders", ctx, []uuid.UUID{order.ID}).Return(map[uuid.UUID][]model.OrderItem{
		order.ID: {{ProductID: 1, Quantity: 1}},
	}, nil)
	m.menu.On("RestaurantsStockingAll", ctx, []int64{1}).Return([]model.RestaurantCandidate{
		{ID: 1, Name: "Far", Address: "far address"},
		{ID: 2, Name: "Near", Address: "near address"},
	}, nil)
	m.resolver.On("Resolve", ctx, "order address").Return(model.Coordinates{Lat: 55.75, Lon: 37.62}, nil)
	m.resolver.On("Resolve", ctx, "near address").Return(model.Coordinates{Lat: 55.7725, Lon: 37.62}, nil)
	m.resolver.On("Resolve", ctx, "far address").Return(model.Coordinates{Lat: 55.861, Lon: 37.62}, nil)

	assignments, err := svc.OrderAssignments(ctx)

	require.NoError(t, err)
	require.Len(t, assignments[0].Candidates, 2)
	assert.Equal(t, "Near", assignments[0].Candidates[0].Restaurant.Name)
}

func TestDashboardService_OrderAssignments_ListError(t *testing.T) {
	ctx := context.Background()
	svc, m := newDashboard(DashboardOptions{Workers: 1})

	m.orders.On("ListOpen", ctx).Return(nil, errors.New("database error"))

	_, err := svc.OrderAssignments(ctx)

	assert.Error(t, err)
}

// countingResolver records the highest number of concurrent calls.
type countingResolver struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (r *countingResolver) Resolve(context.Context, string) (model.Coordinates, error) {
	r.mu.Lock()
	r.active++
	if r.active > r.maxSeen {
		r.maxSeen = r.active
	}
	r.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return model.Coordinates{}, geo.ErrNotFound
}

func TestDashboardService_OrderAssignments_BoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	menu := new(MockMenuRepository)
	resolver := &countingResolver{}

	open := make([]model.Order, 8)
	ids := make([]uuid.UUID, len(open))
	for i := range open {
		open[i] = model.Order{ID: uuid.New(), Address: "somewhere"}
		ids[i] = open[i].ID
	}
	orders.On("ListOpen", ctx).Return(open, nil)
	orders.On("ItemsForOrders", ctx, ids).Return(map[uuid.UUID][]model.OrderItem{}, nil)
	menu.On("RestaurantsStockingAll", ctx, mock.Anything).Return([]model.RestaurantCandidate{}, nil)

	svc := NewDashboardService(new(MockRestaurantRepository), new(MockProductRepository), menu, orders, resolver,
		DashboardOptions{Workers: 3}, zerolog.Nop())

	assignments, err := svc.OrderAssignments(ctx)

	require.NoError(t, err)
	assert.Len(t, assignments, 8)
	assert.LessOrEqual(t, resolver.maxSeen, 3)
}

func TestDashboardService_AssignRestaurant(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	order := &model.Order{ID: orderID}
	items := []model.OrderItem{{ProductID: 1}, {ProductID: 2}}

	t.Run("Capable restaurant", func(t *testing.T) {
		svc, m := newDashboard(DashboardOptions{Workers: 1})
		m.orders.On("GetByID", ctx, orderID).Return(order, items, nil)
		m.restaurants.On("GetByID", ctx, int64(7)).Return(&model.Restaurant{ID: 7}, nil)
		m.menu.On("RestaurantsStockingAll", ctx, []int64{1, 2}).Return([]model.RestaurantCandidate{{ID: 7}}, nil)
		m.orders.On("AssignRestaurant", ctx, orderID, int64(7)).Return(nil)

		require.NoError(t, svc.AssignRestaurant(ctx, orderID, 7))
		m.orders.AssertExpectations(t)
	})

	t.Run("Restaurant lacks a product", func(t *testing.T) {
		svc, m := newDashboard(DashboardOptions{Workers: 1})
		m.orders.On("GetByID", ctx, orderID).Return(order, items, nil)
		m.restaurants.On("GetByID", ctx, int64(8)).Return(&model.Restaurant{ID: 8}, nil)
		m.menu.On("RestaurantsStockingAll", ctx, []int64{1, 2}).Return([]model.RestaurantCandidate{{ID: 7}}, nil)

		err := svc.AssignRestaurant(ctx, orderID, 8)

		assert.ErrorIs(t, err, model.ErrRestaurantNotCapable)
		m.orders.AssertNotCalled(t, "AssignRestaurant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown order", func(t *testing.T) {
		svc, m := newDashboard(DashboardOptions{Workers: 1})
		m.orders.On("GetByID", ctx, orderID).Return(nil, nil, nil)

		assert.ErrorIs(t, svc.AssignRestaurant(ctx, orderID, 7), model.ErrOrderNotFound)
	})

	t.Run("Unknown restaurant", func(t *testing.T) {
		svc, m := newDashboard(DashboardOptions{Workers: 1})
		m.orders.On("GetByID", ctx, orderID).Return(order, items, nil)
		m.restaurants.On("GetByID", ctx, int64(9)).Return(nil, nil)

		assert.ErrorIs(t, svc.AssignRestaurant(ctx, orderID, 9), model.ErrRestaurantNotFound)
	})
}

func TestDashboardService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("Leaving processing stamps called_at", func(t *testing.T) {
		svc, m := newDashboard(DashboardOptions{Workers: 1})
		m.orders.On("GetByID", ctx, orderID).Return(&model.Order{ID: orderID, Status: model.StatusProcessing}, []model.OrderItem{}, nil)
		m.orders.On("UpdateStatus", ctx, mock.Anything).Return(nil)

		order, err := svc.UpdateStatus(ctx, orderID, model.StatusPacking)

		require.NoError(t, err)
		assert.Equal(t, model.StatusPacking, order.Status)
		assert.NotNil(t, order.CalledAt)
		assert.Nil(t, order.DeliveredAt)
	})

	t.Run("Done stamps delivered_at and keeps called_at", func(t *testing.T) {
		called := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		svc, m := newDashboard(DashboardOptions{Workers: 1})
		m.orders.On("GetByID", ctx, orderID).Return(&model.Order{ID: orderID, Status: model.StatusDelivery, CalledAt: &called}, []model.OrderItem{}, nil)
		m.orders.On("UpdateStatus", ctx, mock.Anything).Return(nil)

		order, err := svc.UpdateStatus(ctx, orderID, model.StatusDone)

		require.NoError(t, err)
		assert.Equal(t, called, *order.CalledAt)
		assert.NotNil(t, order.DeliveredAt)
	})

	t.Run("Invalid status", func(t *testing.T) {
		svc, _ := newDashboard(DashboardOptions{Workers: 1})

		_, err := svc.UpdateStatus(ctx, orderID, model.OrderStatus("cooking"))

		assert.ErrorIs(t, err, model.ErrInvalidStatus)
	})

	t.Run("Unknown order", func(t *testing.T) {
		svc, m := newDashboard(DashboardOptions{Workers: 1})
		m.orders.On("GetByID", ctx, orderID).Return(nil, nil, nil)

		_, err := svc.UpdateStatus(ctx, orderID, model.StatusDone)

		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}
