package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bisaathi/internal/gamify/models"
	id "bisaathi/pkg/domain"
	"bisaathi/pkg/platform/sentinel"
	"bisaathi/pkg/platform/tx"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so stores can run inside a
// caller-managed transaction when one is present in context.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresSnapshotStore reads and writes the stats columns of the users table.
// This store is pure I/O; all accumulation arithmetic happens in the ledger
// before Set is called with absolute values.
type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

func (s *PostgresSnapshotStore) conn(ctx context.Context) dbtx {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresSnapshotStore) Get(ctx context.Context, userID id.UserID) (models.StatsSnapshot, error) {
	query := `
		SELECT score, scans, violations_caught, complaints_filed, complaints_verified, badges, missions_done
		FROM users
		WHERE id = $1
	`
	var snap models.StatsSnapshot
	var badges, missions []string
	err := s.conn(ctx).QueryRowContext(ctx, query, userID.String()).Scan(
		&snap.Score, &snap.Scans, &snap.ViolationsCaught,
		&snap.ComplaintsFiled, &snap.ComplaintsVerified,
		pq.Array(&badges), pq.Array(&missions),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StatsSnapshot{}, sentinel.ErrNotFound
		}
		return models.StatsSnapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	snap.Badges = toBadgeIDs(badges)
	snap.MissionsDone = toMissionIDs(missions)
	return snap, nil
}

// Set writes absolute counter values. Callers that retry after a failed write
// therefore converge on the same row instead of double-counting.
func (s *PostgresSnapshotStore) Set(ctx context.Context, userID id.UserID, snap models.StatsSnapshot) error {
	query := `
		UPDATE users
		SET score = $2,
		    scans = $3,
		    violations_caught = $4,
		    complaints_filed = $5,
		    complaints_verified = $6,
		    badges = $7,
		    missions_done = $8
		WHERE id = $1
	`
	res, err := s.conn(ctx).ExecContext(ctx, query,
		userID.String(),
		snap.Score, snap.Scans, snap.ViolationsCaught,
		snap.ComplaintsFiled, snap.ComplaintsVerified,
		pq.Array(fromBadgeIDs(snap.Badges)), pq.Array(fromMissionIDs(snap.MissionsDone)),
	)
	if err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set snapshot rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func toBadgeIDs(raw []string) []models.BadgeID {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.BadgeID, len(raw))
	for i, v := range raw {
		out[i] = models.BadgeID(v)
	}
	return out
}

func fromBadgeIDs(ids []models.BadgeID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = string(v)
	}
	return out
}

func toMissionIDs(raw []string) []models.MissionID {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.MissionID, len(raw))
	for i, v := range raw {
		out[i] = models.MissionID(v)
	}
	return out
}

func fromMissionIDs(ids []models.MissionID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = string(v)
	}
	return out
}

// PostgresNotificationStore persists pending reward notices.
//
// Expected schema:
//
//	CREATE TABLE notifications (
//	    id BIGSERIAL PRIMARY KEY,
//	    user_id UUID NOT NULL REFERENCES users(id),
//	    message TEXT NOT NULL,
//	    points INT NOT NULL DEFAULT 0,
//	    seen BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresNotificationStore struct {
	db *sql.DB
}

func NewPostgresNotifications(db *sql.DB) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

func (s *PostgresNotificationStore) conn(ctx context.Context) dbtx {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresNotificationStore) Append(ctx context.Context, userID id.UserID, n models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, message, points, seen, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query, userID.String(), n.Message, n.Points, n.Seen, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

func (s *PostgresNotificationStore) List(ctx context.Context, userID id.UserID) ([]models.Notification, error) {
	query := `
		SELECT message, points, seen, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.Message, &n.Points, &n.Seen, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresNotificationStore) MarkAllSeen(ctx context.Context, userID id.UserID) error {
	query := `UPDATE notifications SET seen = TRUE WHERE user_id = $1 AND seen = FALSE`
	if _, err := s.conn(ctx).ExecContext(ctx, query, userID.String()); err != nil {
		return fmt.Errorf("mark notifications seen: %w", err)
	}
	return nil
}
