// Package catalog is the static award table: it maps action kinds to point
// values and human-readable reasons. It holds no state; both the ledger and
// any rendering layer read from the same table so point values are never
// duplicated in display code.
package catalog

import (
	"bisaathi/internal/gamify/models"
	"bisaathi/internal/verify"
)

// Entry is the canonical value of one award kind.
type Entry struct {
	Points int
	Reason string
}

var table = map[models.AwardKind]Entry{
	models.AwardScanAny:                {Points: 5, Reason: "Scan recorded"},
	models.AwardFirstScanBonus:         {Points: 10, Reason: "Welcome bonus — first scan!"},
	models.AwardMilestoneFiveScans:     {Points: 15, Reason: "5 scans milestone reached!"},
	models.AwardMilestoneTenScans:      {Points: 25, Reason: "10 scans milestone reached!"},
	models.AwardCatchExpired:           {Points: 25, Reason: "You caught an expired product!"},
	models.AwardCatchSuspended:         {Points: 35, Reason: "You caught a suspended product!"},
	models.AwardCatchInvalid:           {Points: 20, Reason: "You flagged an unregistered product!"},
	models.AwardSubmitComplaint:        {Points: 50, Reason: "Complaint submitted — great work!"},
	models.AwardFirstComplaintBonus:    {Points: 25, Reason: "First complaint filed!"},
	models.AwardComplaintResolvedBonus: {Points: 100, Reason: "Your complaint was verified by BIS!"},
}

// Lookup returns the canonical entry for a kind.
func Lookup(kind models.AwardKind) (Entry, bool) {
	e, ok := table[kind]
	return e, ok
}

// Award materializes an AwardEntry for a kind. Unknown kinds yield a zero
// entry; callers only pass enum constants so this does not happen in practice.
func Award(kind models.AwardKind) models.AwardEntry {
	e := table[kind]
	return models.AwardEntry{Points: e.Points, Reason: e.Reason, Kind: kind}
}

// AwardsForVerification selects the award entries earned by one successful
// registry lookup, given the snapshot as it stood before the scan. Every scan
// earns the base award; first-scan and milestone bonuses key off what the
// lifetime scan count is about to become; at most one catch award applies.
func AwardsForVerification(prev models.StatsSnapshot, outcome verify.Outcome) []models.AwardEntry {
	awards := []models.AwardEntry{Award(models.AwardScanAny)}

	switch prev.Scans + 1 {
	case 1:
		awards = append(awards, Award(models.AwardFirstScanBonus))
	case 5:
		awards = append(awards, Award(models.AwardMilestoneFiveScans))
	case 10:
		awards = append(awards, Award(models.AwardMilestoneTenScans))
	}

	switch outcome {
	case verify.OutcomeExpired:
		awards = append(awards, Award(models.AwardCatchExpired))
	case verify.OutcomeSuspended:
		awards = append(awards, Award(models.AwardCatchSuspended))
	case verify.OutcomeNotFound:
		awards = append(awards, Award(models.AwardCatchInvalid))
	}

	return awards
}

// AwardsForComplaint selects the award entries earned by filing a complaint,
// given the snapshot as it stood before the filing.
func AwardsForComplaint(prev models.StatsSnapshot) []models.AwardEntry {
	awards := []models.AwardEntry{Award(models.AwardSubmitComplaint)}
	if prev.ComplaintsFiled == 0 {
		awards = append(awards, Award(models.AwardFirstComplaintBonus))
	}
	return awards
}
