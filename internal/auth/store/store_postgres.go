package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bisaathi/internal/auth/models"
	id "bisaathi/pkg/domain"
	"bisaathi/pkg/platform/sentinel"
)

// PostgresUserStore persists accounts in PostgreSQL. This store is pure I/O;
// password policy and uniqueness semantics live in the service.
//
// Expected schema (users table also carries the stats snapshot columns owned
// by the gamify store):
//
//	CREATE TABLE users (
//	    id UUID PRIMARY KEY,
//	    name TEXT NOT NULL,
//	    email TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    role TEXT NOT NULL DEFAULT 'user',
//	    score INT NOT NULL DEFAULT 0,
//	    scans INT NOT NULL DEFAULT 0,
//	    violations_caught INT NOT NULL DEFAULT 0,
//	    complaints_filed INT NOT NULL DEFAULT 0,
//	    complaints_verified INT NOT NULL DEFAULT 0,
//	    badges TEXT[] NOT NULL DEFAULT '{}',
//	    missions_done TEXT[] NOT NULL DEFAULT '{}',
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, LOWER($3), $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID.String(), user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, userID.String()))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE email = LOWER($1)
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var rawID string
	if err := row.Scan(&rawID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, sentinel.ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return models.User{}, fmt.Errorf("scan user id: %w", err)
	}
	user.ID = userID
	return user, nil
}
