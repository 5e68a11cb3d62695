package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolOptions(t *testing.T) {
	opts := DefaultPoolOptions()

	assert.Equal(t, int32(10), opts.MaxConns)
	assert.Equal(t, int32(1), opts.MinConns)
	assert.Equal(t, 1*time.Hour, opts.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, opts.MaxConnIdleTime)
}

func TestOpen_InvalidConnectionString(t *testing.T) {
	ctx := context.Background()

	pool, err := Open(ctx, "invalid connection string", DefaultPoolOptions())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
	assert.Nil(t, pool)
}

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "postgres scheme",
			in:       "postgres://u:p@localhost:5432/db?sslmode=disable",
			expected: "pgx5://u:p@localhost:5432/db?sslmode=disable",
		},
		{
			name:     "postgresql scheme",
			in:       "postgresql://u:p@localhost/db",
			expected: "pgx5://u:p@localhost/db",
		},
		{
			name:     "already pgx5",
			in:       "pgx5://u:p@localhost/db",
			expected: "pgx5://u:p@localhost/db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, migrationURL(tt.in))
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
