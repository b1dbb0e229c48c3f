//go:build integration

// Package containers provides shared testcontainers helpers for integration
// tests. Build with -tags integration; a local container runtime is required.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production migrations: accounts with their stats
// snapshot columns, notifications, complaints, and the product registry.
const schema = `
CREATE TABLE users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    score INT NOT NULL DEFAULT 0,
    scans INT NOT NULL DEFAULT 0,
    violations_caught INT NOT NULL DEFAULT 0,
    complaints_filed INT NOT NULL DEFAULT 0,
    complaints_verified INT NOT NULL DEFAULT 0,
    badges TEXT[] NOT NULL DEFAULT '{}',
    missions_done TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE notifications (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    message TEXT NOT NULL,
    points INT NOT NULL DEFAULT 0,
    seen BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE complaints (
    id UUID PRIMARY KEY,
    cml_code TEXT NOT NULL,
    product_name TEXT NOT NULL,
    issue_type TEXT NOT NULL,
    complaint_text TEXT NOT NULL,
    geo_lat DOUBLE PRECISION,
    geo_lng DOUBLE PRECISION,
    submitted_at TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    admin_notes TEXT NOT NULL DEFAULT '',
    user_id UUID REFERENCES users(id),
    points_awarded BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE products (
    cml_code TEXT PRIMARY KEY,
    product_name TEXT NOT NULL,
    manufacturer TEXT NOT NULL DEFAULT '',
    expiry TIMESTAMPTZ,
    status TEXT NOT NULL DEFAULT 'valid'
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container, applies the schema, and
// registers cleanup with the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("bisaathi_test"),
		tcpostgres.WithUsername("bisaathi"),
		tcpostgres.WithPassword("bisaathi"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

// TruncateTables clears the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
