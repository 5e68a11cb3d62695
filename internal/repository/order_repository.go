package repository

import (
	"context"
	"errors"
	"fmt"

	"foodcart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, firstname, lastname, phonenumber, address, status, created_at,
	called_at, delivered_at, comment, payment_method, restaurant_id
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.Firstname,
		order.Lastname,
		order.Phonenumber,
		order.Address,
		string(order.Status),
		order.CreatedAt,
		order.CalledAt,
		order.DeliveredAt,
		order.Comment,
		string(order.PaymentMethod),
		order.RestaurantID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Int64("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, orderQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsByOrder, err := r.ItemsForOrders(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, nil, err
	}

	items := itemsByOrder[id]
	if items == nil {
		items = []model.OrderItem{}
	}

	return order, items, nil
}

// ListOpen retrieves orders whose status is not done, grouped by status
// and oldest first.
func (r *orderRepository) ListOpen(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status <> $1
		ORDER BY
			CASE status
				WHEN 'processing' THEN 0
				WHEN 'packing' THEN 1
				WHEN 'delivery' THEN 2
				ELSE 3
			END,
			created_at,
			id
	`

	rows, err := r.pool.Query(ctx, query, string(model.StatusDone))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query open orders")
		return nil, fmt.Errorf("failed to query open orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ItemsForOrders retrieves the items of several orders keyed by order ID.
func (r *orderRepository) ItemsForOrders(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	result := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("order_count", len(orderIDs)).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return result, nil
}

// AssignRestaurant sets the restaurant that will cook the order.
func (r *orderRepository) AssignRestaurant(ctx context.Context, orderID uuid.UUID, restaurantID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET restaurant_id = $2 WHERE id = $1`, orderID, restaurantID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Int64("restaurant_id", restaurantID).
			Msg("failed to assign restaurant")
		return fmt.Errorf("failed to assign restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// UpdateStatus persists status, called_at and delivered_at of the order.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, called_at = $3, delivered_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, order.ID, string(order.Status), order.CalledAt, order.DeliveredAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("status", string(order.Status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// scanOrder reads one row selected with orderColumns.
func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		order         model.Order
		status        string
		paymentMethod string
	)
	err := row.Scan(
		&order.ID,
		&order.Firstname,
		&order.Lastname,
		&order.Phonenumber,
		&order.Address,
		&status,
		&order.CreatedAt,
		&order.CalledAt,
		&order.DeliveredAt,
		&order.Comment,
		&paymentMethod,
		&order.RestaurantID,
	)
	if err != nil {
		return nil, err
	}
	order.Status = model.OrderStatus(status)
	order.PaymentMethod = model.PaymentMethod(paymentMethod)
	return &order, nil
}
