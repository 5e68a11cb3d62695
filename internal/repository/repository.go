package repository

import (
	"context"

	"foodcart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RestaurantRepository defines read access to restaurants.
type RestaurantRepository interface {
	// List retrieves all restaurants ordered by name.
	List(ctx context.Context) ([]model.Restaurant, error)

	// GetByID retrieves a single restaurant, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Restaurant, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// ListAll retrieves every product with its category, ordered by name.
	ListAll(ctx context.Context) ([]model.Product, error)

	// ListAvailable retrieves products carried by at least one restaurant
	// with availability set.
	ListAvailable(ctx context.Context) ([]model.Product, error)

	// GetByIDs retrieves multiple products by their IDs. Unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// MenuRepository answers questions about restaurant menus.
type MenuRepository interface {
	// RestaurantsStockingAll returns every restaurant whose available menu
	// entries cover the whole product set. An empty set matches every
	// restaurant that has at least one menu entry.
	RestaurantsStockingAll(ctx context.Context, productIDs []int64) ([]model.RestaurantCandidate, error)

	// ListAll retrieves every menu entry.
	ListAll(ctx context.Context) ([]model.MenuEntry, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// ListOpen retrieves orders whose status is not done.
	ListOpen(ctx context.Context) ([]model.Order, error)

	// ItemsForOrders retrieves the items of several orders keyed by order ID.
	ItemsForOrders(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error)

	// AssignRestaurant sets the restaurant that will cook the order.
	AssignRestaurant(ctx context.Context, orderID uuid.UUID, restaurantID int64) error

	// UpdateStatus persists status, called_at and delivered_at of the order.
	UpdateStatus(ctx context.Context, order *model.Order) error
}

// LocationRepository persists geocoding results.
type LocationRepository interface {
	// GetByAddress returns the oldest cached row for the exact address, or nil.
	GetByAddress(ctx context.Context, address string) (*model.Location, error)

	// Create inserts a new cache row. Duplicate addresses are accepted.
	Create(ctx context.Context, location *model.Location) error
}
