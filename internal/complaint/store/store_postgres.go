package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bisaathi/internal/complaint/models"
	id "bisaathi/pkg/domain"
	"bisaathi/pkg/platform/sentinel"
	"bisaathi/pkg/platform/tx"
)

// PostgresComplaintStore persists complaints. This store is pure I/O; the
// lifecycle and bonus eligibility rules live in the service.
//
// Expected schema:
//
//	CREATE TABLE complaints (
//	    id UUID PRIMARY KEY,
//	    cml_code TEXT NOT NULL,
//	    product_name TEXT NOT NULL,
//	    issue_type TEXT NOT NULL,
//	    complaint_text TEXT NOT NULL,
//	    geo_lat DOUBLE PRECISION,
//	    geo_lng DOUBLE PRECISION,
//	    submitted_at TIMESTAMPTZ NOT NULL,
//	    status TEXT NOT NULL DEFAULT 'pending',
//	    admin_notes TEXT NOT NULL DEFAULT '',
//	    user_id UUID REFERENCES users(id),
//	    points_awarded BOOLEAN NOT NULL DEFAULT FALSE
//	);
type PostgresComplaintStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresComplaintStore {
	return &PostgresComplaintStore{db: db}
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresComplaintStore) conn(ctx context.Context) dbtx {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

const complaintColumns = `id, cml_code, product_name, issue_type, complaint_text,
	geo_lat, geo_lng, submitted_at, status, admin_notes, user_id, points_awarded`

func (s *PostgresComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	var lat, lng *float64
	if c.Geo != nil {
		lat, lng = &c.Geo.Lat, &c.Geo.Lng
	}
	var userID *string
	if c.UserID != nil {
		u := c.UserID.String()
		userID = &u
	}
	_, err := s.conn(ctx).ExecContext(ctx, query,
		c.ID.String(), c.CMLCode, c.ProductName, string(c.IssueType), c.ComplaintText,
		lat, lng, c.SubmittedAt, string(c.Status), c.AdminNotes, userID, c.PointsAwarded,
	)
	if err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (s *PostgresComplaintStore) FindByID(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	return scanComplaint(s.conn(ctx).QueryRowContext(ctx, query, complaintID.String()))
}

func (s *PostgresComplaintStore) List(ctx context.Context, filter models.Filter) ([]*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.IssueType != "" {
		args = append(args, string(filter.IssueType))
		query += fmt.Sprintf(" AND issue_type = $%d", len(args))
	}
	if filter.Anonymous != nil {
		if *filter.Anonymous {
			query += " AND user_id IS NULL"
		} else {
			query += " AND user_id IS NOT NULL"
		}
	}
	query += " ORDER BY submitted_at DESC"

	return s.queryComplaints(ctx, query, args...)
}

func (s *PostgresComplaintStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE user_id = $1 ORDER BY submitted_at DESC`
	return s.queryComplaints(ctx, query, userID.String())
}

// UpdateStatus writes the new status. Notes are merged in only when the
// transition carries some; a transition without notes keeps what an earlier
// officer recorded.
func (s *PostgresComplaintStore) UpdateStatus(ctx context.Context, complaintID id.ComplaintID, status models.Status, adminNotes string) error {
	query := `
		UPDATE complaints
		SET status = $2, admin_notes = COALESCE(NULLIF($3, ''), admin_notes)
		WHERE id = $1
	`
	res, err := s.conn(ctx).ExecContext(ctx, query, complaintID.String(), string(status), adminNotes)
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update complaint status rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ClaimResolutionBonus is the idempotence point for the one-shot bonus: the
// conditional UPDATE succeeds for exactly one caller regardless of concurrent
// transitions.
func (s *PostgresComplaintStore) ClaimResolutionBonus(ctx context.Context, complaintID id.ComplaintID) (bool, error) {
	query := `
		UPDATE complaints
		SET points_awarded = TRUE
		WHERE id = $1 AND points_awarded = FALSE
	`
	res, err := s.conn(ctx).ExecContext(ctx, query, complaintID.String())
	if err != nil {
		return false, fmt.Errorf("claim resolution bonus: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim resolution bonus rows affected: %w", err)
	}
	return affected == 1, nil
}

func (s *PostgresComplaintStore) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'reviewing'),
			COUNT(*) FILTER (WHERE status = 'resolved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM complaints
	`
	var counts models.StatusCounts
	err := s.conn(ctx).QueryRowContext(ctx, query).Scan(
		&counts.Total, &counts.Pending, &counts.Reviewing, &counts.Resolved, &counts.Rejected,
	)
	if err != nil {
		return models.StatusCounts{}, fmt.Errorf("count complaints by status: %w", err)
	}
	return counts, nil
}

func (s *PostgresComplaintStore) CountByDay(ctx context.Context, days int) ([]models.DayCount, error) {
	query := `
		SELECT TO_CHAR(submitted_at, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM complaints
		WHERE submitted_at >= NOW() - ($1 * INTERVAL '1 day')
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("count complaints by day: %w", err)
	}
	defer rows.Close()

	var out []models.DayCount
	for rows.Next() {
		var dc models.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day counts: %w", err)
	}
	return out, nil
}

// CountResolvedByUser tallies resolved filings per owner.
func (s *PostgresComplaintStore) CountResolvedByUser(ctx context.Context) (map[id.UserID]int, error) {
	query := `
		SELECT user_id, COUNT(*)
		FROM complaints
		WHERE status = 'resolved' AND user_id IS NOT NULL
		GROUP BY user_id
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count resolved by user: %w", err)
	}
	defer rows.Close()

	out := make(map[id.UserID]int)
	for rows.Next() {
		var rawID string
		var count int
		if err := rows.Scan(&rawID, &count); err != nil {
			return nil, fmt.Errorf("scan resolved count: %w", err)
		}
		userID, err := id.ParseUserID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan resolved count user id: %w", err)
		}
		out[userID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolved counts: %w", err)
	}
	return out, nil
}

func (s *PostgresComplaintStore) queryComplaints(ctx context.Context, query string, args ...any) ([]*models.Complaint, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()

	var out []*models.Complaint
	for rows.Next() {
		c, err := scanComplaintRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaints: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row *sql.Row) (*models.Complaint, error) {
	c, err := scanInto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanComplaintRow(rows *sql.Rows) (*models.Complaint, error) {
	return scanInto(rows)
}

func scanInto(scanner rowScanner) (*models.Complaint, error) {
	var c models.Complaint
	var rawID string
	var issueType, status string
	var lat, lng sql.NullFloat64
	var rawUserID sql.NullString

	err := scanner.Scan(
		&rawID, &c.CMLCode, &c.ProductName, &issueType, &c.ComplaintText,
		&lat, &lng, &c.SubmittedAt, &status, &c.AdminNotes, &rawUserID, &c.PointsAwarded,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan complaint: %w", err)
	}

	complaintID, err := id.ParseComplaintID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan complaint id: %w", err)
	}
	c.ID = complaintID
	c.IssueType = models.IssueType(issueType)
	c.Status = models.Status(status)
	if lat.Valid && lng.Valid {
		c.Geo = &models.Geo{Lat: lat.Float64, Lng: lng.Float64}
	}
	if rawUserID.Valid {
		userID, err := id.ParseUserID(rawUserID.String)
		if err != nil {
			return nil, fmt.Errorf("scan complaint user id: %w", err)
		}
		c.UserID = &userID
	}
	return &c, nil
}
