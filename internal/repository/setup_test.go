package repository

import (
	"context"
	"testing"
	"time"

	"foodcart/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL testcontainer, applies the embedded
// migrations and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.MigrateUp(connStr, zerolog.Nop()))

	pool, err := database.Open(ctx, connStr, database.DefaultPoolOptions())
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func seedRestaurant(t *testing.T, pool *pgxpool.Pool, name, address string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO restaurants (name, address, contact_phone) VALUES ($1, $2, $3) RETURNING id`,
		name, address, "+74951234567",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedCategory(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO product_categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, name, price string, categoryID *int64) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO products (name, price, category_id, image) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, decimal.RequireFromString(price), categoryID, name+".jpg",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedMenuEntry(t *testing.T, pool *pgxpool.Pool, restaurantID, productID int64, available bool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO restaurant_menu_items (restaurant_id, product_id, availability) VALUES ($1, $2, $3)`,
		restaurantID, productID, available,
	)
	require.NoError(t, err)
}
