// Package models defines the complaint aggregate and its lifecycle enums.
package models

import (
	"time"

	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
)

// Status is the complaint lifecycle state. Officers advance it; submission
// always starts at pending. Resolved and rejected are terminal only for
// awarding purposes: notes and status may still be edited afterwards, but the
// resolution bonus never re-fires.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewing Status = "reviewing"
	StatusResolved  Status = "resolved"
	StatusRejected  Status = "rejected"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusReviewing: true,
	StatusResolved:  true,
	StatusRejected:  true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid complaint status")
	}
	return st, nil
}

func (s Status) String() string { return string(s) }

// IssueType classifies what the complainant observed.
type IssueType string

const (
	IssueExpired   IssueType = "expired"
	IssueSuspended IssueType = "suspended"
	IssueNotFound  IssueType = "not_found"
)

var validIssueTypes = map[IssueType]bool{
	IssueExpired:   true,
	IssueSuspended: true,
	IssueNotFound:  true,
}

// ParseIssueType constructs an IssueType from external input.
func ParseIssueType(s string) (IssueType, error) {
	it := IssueType(s)
	if !validIssueTypes[it] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid issue type")
	}
	return it, nil
}

// Geo is an optional submission location.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Complaint is a compliance complaint filed by a citizen. UserID is nil for
// anonymous filings; PointsAwarded flips false→true at most once, exactly when
// the complaint first transitions into resolved with an owner present.
type Complaint struct {
	ID            id.ComplaintID `json:"id"`
	CMLCode       string         `json:"cml_code"`
	ProductName   string         `json:"product_name"`
	IssueType     IssueType      `json:"issue_type"`
	ComplaintText string         `json:"complaint_text"`
	Geo           *Geo           `json:"geo,omitempty"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	Status        Status         `json:"status"`
	AdminNotes    string         `json:"admin_notes,omitempty"`
	UserID        *id.UserID     `json:"user_id,omitempty"`
	PointsAwarded bool           `json:"points_awarded"`
}

// Clone returns a copy safe for the caller to mutate.
func (c *Complaint) Clone() *Complaint {
	out := *c
	if c.Geo != nil {
		g := *c.Geo
		out.Geo = &g
	}
	if c.UserID != nil {
		u := *c.UserID
		out.UserID = &u
	}
	return &out
}

// EligibleForBonus reports whether transitioning this complaint to newStatus
// should fire the one-shot resolution bonus. This is the single idempotence
// guard: first transition into resolved, owner present, bonus not yet paid.
func (c *Complaint) EligibleForBonus(newStatus Status) bool {
	return newStatus == StatusResolved &&
		c.Status != StatusResolved &&
		c.UserID != nil &&
		!c.PointsAwarded
}

// StatusCounts aggregates complaints per lifecycle state for the officer
// dashboard.
type StatusCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Reviewing int `json:"reviewing"`
	Resolved  int `json:"resolved"`
	Rejected  int `json:"rejected"`
}

// DayCount is the number of complaints submitted on one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// TopValidator is one row of the officer view of highest-scoring users,
// ordered by ledger score. Resolved carries how many of their filings were
// resolved, for display alongside the rank.
type TopValidator struct {
	UserID   id.UserID `json:"user_id"`
	Name     string    `json:"name,omitempty"`
	Score    int       `json:"score"`
	Resolved int       `json:"resolved"`
}

// Filter narrows officer list queries. Zero values match everything.
type Filter struct {
	Status    Status
	IssueType IssueType
	// Anonymous filters by ownership: nil matches all, true matches filings
	// without an owner, false matches filings with one.
	Anonymous *bool
}
