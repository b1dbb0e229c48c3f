package verify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bisaathi/pkg/platform/sentinel"
)

// PostgresProductStore reads the certification registry.
//
// Expected schema:
//
//	CREATE TABLE products (
//	    cml_code TEXT PRIMARY KEY,
//	    product_name TEXT NOT NULL,
//	    manufacturer TEXT NOT NULL DEFAULT '',
//	    expiry TIMESTAMPTZ,
//	    status TEXT NOT NULL DEFAULT 'valid'
//	);
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) FindByCode(ctx context.Context, code string) (Product, error) {
	query := `
		SELECT cml_code, product_name, manufacturer, expiry, status
		FROM products
		WHERE cml_code = $1
	`
	var p Product
	var expiry sql.NullTime
	var status string
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&p.CMLCode, &p.ProductName, &p.Manufacturer, &expiry, &status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, sentinel.ErrNotFound
		}
		return Product{}, fmt.Errorf("find product: %w", err)
	}
	if expiry.Valid {
		t := expiry.Time
		p.Expiry = &t
	}
	p.Status = Outcome(status)
	return p, nil
}
