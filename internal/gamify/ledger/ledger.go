// Package ledger folds award batches into stats snapshots and reconciles
// guest progress into accounts. Both operations are deterministic, perform no
// I/O, and never mutate their inputs, so callers can apply them optimistically
// and replay them when a reconciliation attempt fails.
package ledger

import (
	"bisaathi/internal/gamify/models"
	"bisaathi/internal/gamify/rules"
)

// Accumulate combines a batch of awards into a new snapshot. A complaint
// filing does not count as a scan. The returned badge list is what this
// particular batch newly unlocked, for notification purposes.
func Accumulate(prev models.StatsSnapshot, awards []models.AwardEntry, flags models.ActionFlags) (models.StatsSnapshot, []models.BadgeID) {
	next := prev.Clone()

	for _, a := range awards {
		next.Score += a.Points
	}
	if !flags.IsComplaint {
		next.Scans++
	}
	if flags.IsViolation {
		next.ViolationsCaught++
	}
	if flags.IsComplaint {
		next.ComplaintsFiled++
	}

	return rules.Apply(next, flags)
}

// Merge reconciles locally-held guest progress into a freshly authenticated
// account snapshot. A guest with zero score has nothing worth keeping and the
// account snapshot is returned unchanged. Otherwise counters add and badge and
// mission sets union, preserving the account's element order.
//
// Merge is single-shot: applying the same guest snapshot twice double-counts.
// Callers must clear the guest state immediately after the authoritative
// write commits, and must not apply the result locally if that write fails.
func Merge(account, guest models.StatsSnapshot) models.StatsSnapshot {
	if guest.IsZero() {
		return account.Clone()
	}

	out := account.Clone()
	out.Score += guest.Score
	out.Scans += guest.Scans
	out.ViolationsCaught += guest.ViolationsCaught
	out.ComplaintsFiled += guest.ComplaintsFiled

	for _, b := range guest.Badges {
		if !out.HasBadge(b) {
			out.Badges = append(out.Badges, b)
		}
	}
	for _, m := range guest.MissionsDone {
		if !out.HasMission(m) {
			out.MissionsDone = append(out.MissionsDone, m)
		}
	}
	return out
}
