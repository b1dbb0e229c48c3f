package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bisaathi/internal/gamify/catalog"
	"bisaathi/internal/gamify/models"
	"bisaathi/internal/verify"
)

func TestAccumulateFirstExpiredScan(t *testing.T) {
	prev := models.StatsSnapshot{}
	awards := catalog.AwardsForVerification(prev, verify.OutcomeExpired)

	next, newBadges := Accumulate(prev, awards, models.ActionFlags{IsViolation: true})

	// 5 base + 10 welcome + 25 expired catch.
	assert.Equal(t, 40, next.Score)
	assert.Equal(t, 1, next.Scans)
	assert.Equal(t, 1, next.ViolationsCaught)
	assert.ElementsMatch(t, []models.BadgeID{models.BadgeFirstScan, models.BadgeFirstCatch}, newBadges)
	assert.ElementsMatch(t, []models.MissionID{models.MissionFirstVerify, models.MissionFirstCatch}, next.MissionsDone)
}

func TestAccumulateComplaintDoesNotCountAsScan(t *testing.T) {
	prev := models.StatsSnapshot{Score: 40, Scans: 1}
	awards := catalog.AwardsForComplaint(prev)

	next, _ := Accumulate(prev, awards, models.ActionFlags{IsComplaint: true})

	assert.Equal(t, 1, next.Scans)
	assert.Equal(t, 1, next.ComplaintsFiled)
	assert.Equal(t, 115, next.Score)
}

func TestAccumulateCrossingTierAwardsHighestBadgeOnly(t *testing.T) {
	// 140 + 15 crosses into Inspector territory; only the inspector badge is
	// granted even though the validator band was never badged.
	prev := models.StatsSnapshot{Score: 140, Scans: 11}
	awards := []models.AwardEntry{
		catalog.Award(models.AwardScanAny),
		{Points: 10, Reason: "test filler", Kind: models.AwardKind("filler")},
	}

	next, newBadges := Accumulate(prev, awards, models.ActionFlags{})

	require.Equal(t, 165, next.Score)
	assert.Equal(t, []models.BadgeID{models.BadgeInspector}, newBadges)
}

func TestAccumulateSkippedTiersAreNotGrantedRetroactively(t *testing.T) {
	prev := models.StatsSnapshot{Score: 950, Scans: 40, Badges: []models.BadgeID{models.BadgeSrInspector}}
	awards := []models.AwardEntry{{Points: 100, Kind: models.AwardComplaintResolvedBonus}}

	next, newBadges := Accumulate(prev, awards, models.ActionFlags{})

	assert.Equal(t, []models.BadgeID{models.BadgeAmbassador}, newBadges)
	assert.NotContains(t, next.Badges, models.BadgeInspector)
}

func TestAccumulateIsDeterministicAndNonMutating(t *testing.T) {
	prev := models.StatsSnapshot{
		Score:  30,
		Scans:  4,
		Badges: []models.BadgeID{models.BadgeFirstScan},
	}
	awards := catalog.AwardsForVerification(prev, verify.OutcomeValid)

	a, _ := Accumulate(prev, awards, models.ActionFlags{})
	b, _ := Accumulate(prev, awards, models.ActionFlags{})

	assert.Equal(t, a, b)
	assert.Equal(t, 30, prev.Score, "input snapshot must not be mutated")
	assert.Equal(t, []models.BadgeID{models.BadgeFirstScan}, prev.Badges)
}

func TestMergeZeroScoreGuestReturnsAccountUnchanged(t *testing.T) {
	account := models.StatsSnapshot{Score: 200, Scans: 15, Badges: []models.BadgeID{models.BadgeInspector}}
	guest := models.StatsSnapshot{Scans: 5, Badges: []models.BadgeID{models.BadgeFirstScan}}

	merged := Merge(account, guest)

	assert.Equal(t, account, merged)
}

func TestMergeAddsCountersAndUnionsSets(t *testing.T) {
	account := models.StatsSnapshot{
		Score:            100,
		Scans:            7,
		ViolationsCaught: 2,
		ComplaintsFiled:  1,
		Badges:           []models.BadgeID{models.BadgeFirstScan, models.BadgeFirstReport},
		MissionsDone:     []models.MissionID{models.MissionFirstVerify},
	}
	guest := models.StatsSnapshot{
		Score:            45,
		Scans:            3,
		ViolationsCaught: 1,
		Badges:           []models.BadgeID{models.BadgeFirstScan, models.BadgeFirstCatch},
		MissionsDone:     []models.MissionID{models.MissionFirstVerify, models.MissionFirstCatch},
	}

	merged := Merge(account, guest)

	assert.Equal(t, 145, merged.Score)
	assert.Equal(t, 10, merged.Scans)
	assert.Equal(t, 3, merged.ViolationsCaught)
	assert.Equal(t, 1, merged.ComplaintsFiled)
	assert.Equal(t, []models.BadgeID{models.BadgeFirstScan, models.BadgeFirstReport, models.BadgeFirstCatch}, merged.Badges)
	assert.Equal(t, []models.MissionID{models.MissionFirstVerify, models.MissionFirstCatch}, merged.MissionsDone)
}

func TestMergeDoesNotTouchComplaintsVerified(t *testing.T) {
	account := models.StatsSnapshot{Score: 100, ComplaintsVerified: 2}
	guest := models.StatsSnapshot{Score: 50, ComplaintsVerified: 9}

	merged := Merge(account, guest)

	assert.Equal(t, 2, merged.ComplaintsVerified, "guests cannot have verified complaints")
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	account := models.StatsSnapshot{Score: 10, Badges: []models.BadgeID{models.BadgeFirstScan}}
	guest := models.StatsSnapshot{Score: 5, Badges: []models.BadgeID{models.BadgeFirstCatch}}

	_ = Merge(account, guest)

	assert.Equal(t, []models.BadgeID{models.BadgeFirstScan}, account.Badges)
	assert.Equal(t, []models.BadgeID{models.BadgeFirstCatch}, guest.Badges)
}
