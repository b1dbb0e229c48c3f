package leaderboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	id "bisaathi/pkg/domain"
)

// PostgresStore ranks directly off the users table, the authoritative score
// source.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) TopByScore(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, name, score
		FROM users
		ORDER BY score DESC, id ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top by score: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var rawID string
		if err := rows.Scan(&rawID, &e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		userID, err := id.ParseUserID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard user id: %w", err)
		}
		e.UserID = userID
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard entries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) NamesByID(ctx context.Context, userIDs []id.UserID) (map[id.UserID]string, error) {
	if len(userIDs) == 0 {
		return map[id.UserID]string{}, nil
	}

	raw := make([]string, len(userIDs))
	for i, userID := range userIDs {
		raw[i] = userID.String()
	}
	query := `SELECT id, name FROM users WHERE id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("names by id: %w", err)
	}
	defer rows.Close()

	out := make(map[id.UserID]string, len(userIDs))
	for rows.Next() {
		var rawID, name string
		if err := rows.Scan(&rawID, &name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		userID, err := id.ParseUserID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan name user id: %w", err)
		}
		out[userID] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return out, nil
}
