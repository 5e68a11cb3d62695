package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"foodcart/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the embedded
// migrations and opens a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.MigrateUp(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	pool, err := database.Open(ctx, connStr, database.DefaultPoolOptions())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixtures holds the IDs of the seeded catalogue.
type Fixtures struct {
	Burger, Fries, Shake int64
	Near, Far, Partial   int64
}

// Known addresses of the fake geocoder, as "longitude latitude".
const (
	AddressRedSquare = "Москва, Красная площадь, 1"
	AddressNear      = "Москва, Никольская, 10"
	AddressFar       = "Санкт-Петербург, Невский проспект, 28"
	AddressPartial   = "Москва, Тверская, 7"
	AddressUnknown   = "Нигде, несуществующая улица"
)

var knownPositions = map[string]string{
	AddressRedSquare: "37.617700 55.755800",
	AddressNear:      "37.623000 55.757500",
	AddressFar:       "30.315868 59.939095",
	AddressPartial:   "37.606000 55.762000",
}

// SeedCatalogue inserts products, restaurants and menu entries.
//
// Near and Far stock burger and fries; Partial only stocks burger; Shake is
// listed nowhere as available.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) Fixtures {
	t.Helper()

	ctx := context.Background()
	var f Fixtures

	var category int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO product_categories (name) VALUES ('Бургеры') RETURNING id`,
	).Scan(&category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	products := []struct {
		id    *int64
		name  string
		price string
	}{
		{&f.Burger, "Бургер", "350.00"},
		{&f.Fries, "Картофель фри", "120.50"},
		{&f.Shake, "Молочный коктейль", "199.99"},
	}
	for _, p := range products {
		if err := pool.QueryRow(ctx,
			`INSERT INTO products (name, price, category_id, image) VALUES ($1, $2, $3, $4) RETURNING id`,
			p.name, decimal.RequireFromString(p.price), category, fmt.Sprintf("products/%s.jpg", p.name),
		).Scan(p.id); err != nil {
			t.Fatalf("failed to seed product %s: %v", p.name, err)
		}
	}

	restaurants := []struct {
		id      *int64
		name    string
		address string
	}{
		{&f.Near, "Рядом", AddressNear},
		{&f.Far, "Далеко", AddressFar},
		{&f.Partial, "Частично", AddressPartial},
	}
	for _, r := range restaurants {
		if err := pool.QueryRow(ctx,
			`INSERT INTO restaurants (name, address, contact_phone) VALUES ($1, $2, '+74951234567') RETURNING id`,
			r.name, r.address,
		).Scan(r.id); err != nil {
			t.Fatalf("failed to seed restaurant %s: %v", r.name, err)
		}
	}

	menu := []struct {
		restaurant, product int64
		available           bool
	}{
		{f.Near, f.Burger, true},
		{f.Near, f.Fries, true},
		{f.Near, f.Shake, false},
		{f.Far, f.Burger, true},
		{f.Far, f.Fries, true},
		{f.Partial, f.Burger, true},
		{f.Partial, f.Fries, false},
	}
	for _, m := range menu {
		if _, err := pool.Exec(ctx,
			`INSERT INTO restaurant_menu_items (restaurant_id, product_id, availability) VALUES ($1, $2, $3)`,
			m.restaurant, m.product, m.available,
		); err != nil {
			t.Fatalf("failed to seed menu entry: %v", err)
		}
	}

	return f
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "restaurant_menu_items", "restaurants", "products", "product_categories", "locations"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// FakeGeocoder answers Yandex-style geocode requests from knownPositions
// and counts lookups per address.
type FakeGeocoder struct {
	Server *httptest.Server

	mu    sync.Mutex
	calls map[string]int
}

// NewFakeGeocoder starts the fake provider.
func NewFakeGeocoder(t *testing.T) *FakeGeocoder {
	t.Helper()

	g := &FakeGeocoder{calls: map[string]int{}}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Server.Close)

	return g
}

func (g *FakeGeocoder) serve(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("geocode")

	g.mu.Lock()
	g.calls[address]++
	g.mu.Unlock()

	members := "[]"
	if pos, ok := knownPositions[address]; ok {
		members = fmt.Sprintf(`[{"GeoObject": {"Point": {"pos": %q}}}]`, pos)
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"response": {"GeoObjectCollection": {"featureMember": %s}}}`, members)
}

// Calls returns how many times address was looked up.
func (g *FakeGeocoder) Calls(address string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[address]
}
