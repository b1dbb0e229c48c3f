// Package models defines the gamification domain types: the stats snapshot
// owned by a user or guest session, ephemeral award entries, and the badge and
// mission identifier enums shared by the rule engine and any rendering layer.
package models

import "time"

// BadgeID is an enumerated badge identifier.
type BadgeID string

const (
	BadgeFirstScan   BadgeID = "first_scan"
	BadgeFirstReport BadgeID = "first_report"
	BadgeFirstCatch  BadgeID = "first_catch"
	BadgeFiveScans   BadgeID = "five_scans"
	BadgeTenScans    BadgeID = "ten_scans"
	BadgeBISVerified BadgeID = "bis_verified"
	BadgeInspector   BadgeID = "inspector"
	BadgeSrInspector BadgeID = "sr_inspector"
	BadgeAmbassador  BadgeID = "ambassador"
)

// MissionID is an enumerated mission identifier. A mission, once done, is
// never removed; completing one grants exactly one badge the first time.
type MissionID string

const (
	MissionFirstVerify    MissionID = "first_verify"
	MissionFirstCatch     MissionID = "first_catch"
	MissionFirstComplaint MissionID = "first_complaint"
	MissionFiveVerifies   MissionID = "five_verifies"
	MissionTenVerifies    MissionID = "ten_verifies"
)

// AwardKind names a points-earning action.
type AwardKind string

const (
	AwardScanAny                AwardKind = "scan_any"
	AwardFirstScanBonus         AwardKind = "first_scan_bonus"
	AwardMilestoneFiveScans     AwardKind = "milestone_five_scans"
	AwardMilestoneTenScans      AwardKind = "milestone_ten_scans"
	AwardCatchExpired           AwardKind = "catch_expired"
	AwardCatchSuspended         AwardKind = "catch_suspended"
	AwardCatchInvalid           AwardKind = "catch_invalid"
	AwardSubmitComplaint        AwardKind = "submit_complaint"
	AwardFirstComplaintBonus    AwardKind = "first_complaint_bonus"
	AwardComplaintResolvedBonus AwardKind = "complaint_resolved_bonus"
)

// AwardEntry is produced by the catalog and consumed immediately by the
// ledger; only its effect on the snapshot persists.
type AwardEntry struct {
	Points int       `json:"points"`
	Reason string    `json:"reason"`
	Kind   AwardKind `json:"kind"`
}

// ActionFlags describe the action being accumulated.
type ActionFlags struct {
	IsViolation bool
	IsComplaint bool
}

// StatsSnapshot is the cumulative progress of a user or guest session.
// Invariants: counters never go negative, ComplaintsVerified <= ComplaintsFiled,
// badge and mission sets only grow.
type StatsSnapshot struct {
	Score              int         `json:"score"`
	Scans              int         `json:"scans"`
	ViolationsCaught   int         `json:"violations_caught"`
	ComplaintsFiled    int         `json:"complaints_filed"`
	ComplaintsVerified int         `json:"complaints_verified"`
	Badges             []BadgeID   `json:"badges"`
	MissionsDone       []MissionID `json:"missions_done"`
}

// HasBadge reports whether the badge has already been earned.
func (s StatsSnapshot) HasBadge(b BadgeID) bool {
	for _, have := range s.Badges {
		if have == b {
			return true
		}
	}
	return false
}

// HasMission reports whether the mission has already been completed.
func (s StatsSnapshot) HasMission(m MissionID) bool {
	for _, have := range s.MissionsDone {
		if have == m {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can derive new snapshots without
// mutating shared state.
func (s StatsSnapshot) Clone() StatsSnapshot {
	out := s
	out.Badges = append([]BadgeID(nil), s.Badges...)
	out.MissionsDone = append([]MissionID(nil), s.MissionsDone...)
	return out
}

// IsZero reports whether the snapshot holds no progress worth merging.
func (s StatsSnapshot) IsZero() bool {
	return s.Score == 0
}

// HasNegativeCounters reports whether any counter is below zero. Snapshots
// arrive from clients; a negative counter would let a merge drain the
// authoritative ledger, so callers reject these before merging.
func (s StatsSnapshot) HasNegativeCounters() bool {
	return s.Score < 0 ||
		s.Scans < 0 ||
		s.ViolationsCaught < 0 ||
		s.ComplaintsFiled < 0 ||
		s.ComplaintsVerified < 0
}

// RoleTier is a named rank derived purely from cumulative score. UpperThreshold
// is nil for the top tier.
type RoleTier struct {
	Name           string `json:"name"`
	BadgeGlyph     string `json:"badge_glyph"`
	LowerThreshold int    `json:"lower_threshold"`
	UpperThreshold *int   `json:"upper_threshold,omitempty"`
}

// Notification is a pending reward notice stored for later display. Delivery
// is the caller's concern; the core only records it.
type Notification struct {
	Message   string    `json:"message"`
	Points    int       `json:"points"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}
