// Package rules derives role tiers and badge/mission unlocks from cumulative
// stats. All functions are pure; the ledger calls Apply after folding awards
// into the counters.
package rules

import "bisaathi/internal/gamify/models"

// Role tier score thresholds.
const (
	InspectorThreshold   = 150
	SrInspectorThreshold = 500
	AmbassadorThreshold  = 1000
)

// RoleForScore returns the tier a score falls in. Tiers are non-overlapping
// and monotonic; the top tier has no upper bound.
func RoleForScore(score int) models.RoleTier {
	upper := func(n int) *int { return &n }
	switch {
	case score >= AmbassadorThreshold:
		return models.RoleTier{Name: "Quality Ambassador", BadgeGlyph: "ambassador", LowerThreshold: AmbassadorThreshold}
	case score >= SrInspectorThreshold:
		return models.RoleTier{Name: "Senior Inspector", BadgeGlyph: "sr_inspector", LowerThreshold: SrInspectorThreshold, UpperThreshold: upper(AmbassadorThreshold)}
	case score >= InspectorThreshold:
		return models.RoleTier{Name: "Inspector", BadgeGlyph: "inspector", LowerThreshold: InspectorThreshold, UpperThreshold: upper(SrInspectorThreshold)}
	default:
		return models.RoleTier{Name: "Validator", BadgeGlyph: "validator", LowerThreshold: 0, UpperThreshold: upper(InspectorThreshold)}
	}
}

// Apply evaluates the unlock rules against already-accumulated counters and
// returns the snapshot with updated badge/mission sets plus the badges newly
// unlocked by this evaluation. Each rule is idempotent: adding to a set that
// already contains the element is a no-op.
//
// The role-badge rule intentionally grants only the single highest unattained
// tier for the current score. A score that jumps several thresholds in one
// update earns only the top badge; skipped lower tiers are never granted
// retroactively. Badges already earned are always retained.
func Apply(snap models.StatsSnapshot, flags models.ActionFlags) (models.StatsSnapshot, []models.BadgeID) {
	out := snap.Clone()
	var unlocked []models.BadgeID

	addBadge := func(b models.BadgeID) {
		if !out.HasBadge(b) {
			out.Badges = append(out.Badges, b)
			unlocked = append(unlocked, b)
		}
	}
	completeMission := func(m models.MissionID, b models.BadgeID) {
		if !out.HasMission(m) {
			out.MissionsDone = append(out.MissionsDone, m)
			addBadge(b)
		}
	}

	if out.Scans == 1 {
		completeMission(models.MissionFirstVerify, models.BadgeFirstScan)
	}
	if flags.IsViolation {
		completeMission(models.MissionFirstCatch, models.BadgeFirstCatch)
	}
	if flags.IsComplaint {
		completeMission(models.MissionFirstComplaint, models.BadgeFirstReport)
	}
	if out.Scans == 5 {
		completeMission(models.MissionFiveVerifies, models.BadgeFiveScans)
	}
	if out.Scans == 10 {
		completeMission(models.MissionTenVerifies, models.BadgeTenScans)
	}

	// Highest unattained tier only; else-if semantics are load-bearing here.
	if out.Score >= AmbassadorThreshold && !out.HasBadge(models.BadgeAmbassador) {
		addBadge(models.BadgeAmbassador)
	} else if out.Score >= SrInspectorThreshold && !out.HasBadge(models.BadgeSrInspector) {
		addBadge(models.BadgeSrInspector)
	} else if out.Score >= InspectorThreshold && !out.HasBadge(models.BadgeInspector) {
		addBadge(models.BadgeInspector)
	}

	return out, unlocked
}
