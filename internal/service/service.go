package service

import (
	"context"

	"foodcart/internal/model"

	"github.com/google/uuid"
)

// ProductService serves the public catalogue.
type ProductService interface {
	// ListAvailable retrieves products stocked by at least one restaurant,
	// with image URLs resolved.
	ListAvailable(ctx context.Context) ([]model.CatalogProduct, error)

	// Banners returns the storefront promo blocks.
	Banners(ctx context.Context) ([]model.Banner, error)
}

// OrderService defines operations for order registration.
type OrderService interface {
	// Register validates the payload and stores the order with its lines in
	// one transaction. Invalid input yields model.ValidationErrors.
	Register(ctx context.Context, payload *model.OrderPayload) (*model.OrderResponse, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// DashboardService backs the staff views.
type DashboardService interface {
	// Restaurants lists every restaurant ordered by name.
	Restaurants(ctx context.Context) ([]model.Restaurant, error)

	// AvailabilityGrid returns one row per product with a flag per restaurant.
	AvailabilityGrid(ctx context.Context) (*model.AvailabilityGrid, error)

	// OrderAssignments returns every open order with the restaurants able to
	// cook it, nearest first.
	OrderAssignments(ctx context.Context) ([]model.OrderAssignment, error)

	// AssignRestaurant hands an order to a restaurant that stocks all of it.
	AssignRestaurant(ctx context.Context, orderID uuid.UUID, restaurantID int64) error

	// UpdateStatus moves an order to a new status and stamps call and
	// delivery times.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error)
}
