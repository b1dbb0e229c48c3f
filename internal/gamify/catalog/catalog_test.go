package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bisaathi/internal/gamify/models"
	"bisaathi/internal/verify"
)

func TestCanonicalPointValues(t *testing.T) {
	expected := map[models.AwardKind]int{
		models.AwardScanAny:                5,
		models.AwardFirstScanBonus:         10,
		models.AwardMilestoneFiveScans:     15,
		models.AwardMilestoneTenScans:      25,
		models.AwardCatchExpired:           25,
		models.AwardCatchSuspended:         35,
		models.AwardCatchInvalid:           20,
		models.AwardSubmitComplaint:        50,
		models.AwardFirstComplaintBonus:    25,
		models.AwardComplaintResolvedBonus: 100,
	}
	for kind, points := range expected {
		entry, ok := Lookup(kind)
		require.True(t, ok, "missing catalog entry for %s", kind)
		assert.Equal(t, points, entry.Points, "points for %s", kind)
		assert.NotEmpty(t, entry.Reason, "reason for %s", kind)
	}
}

func kinds(awards []models.AwardEntry) []models.AwardKind {
	out := make([]models.AwardKind, len(awards))
	for i, a := range awards {
		out[i] = a.Kind
	}
	return out
}

func TestAwardsForVerification(t *testing.T) {
	tests := []struct {
		name    string
		prev    models.StatsSnapshot
		outcome verify.Outcome
		want    []models.AwardKind
	}{
		{
			name:    "first valid scan",
			prev:    models.StatsSnapshot{},
			outcome: verify.OutcomeValid,
			want:    []models.AwardKind{models.AwardScanAny, models.AwardFirstScanBonus},
		},
		{
			name:    "first expired scan stacks welcome and catch",
			prev:    models.StatsSnapshot{},
			outcome: verify.OutcomeExpired,
			want:    []models.AwardKind{models.AwardScanAny, models.AwardFirstScanBonus, models.AwardCatchExpired},
		},
		{
			name:    "fifth scan milestone",
			prev:    models.StatsSnapshot{Scans: 4},
			outcome: verify.OutcomeValid,
			want:    []models.AwardKind{models.AwardScanAny, models.AwardMilestoneFiveScans},
		},
		{
			name:    "tenth scan milestone with a suspended catch",
			prev:    models.StatsSnapshot{Scans: 9},
			outcome: verify.OutcomeSuspended,
			want:    []models.AwardKind{models.AwardScanAny, models.AwardMilestoneTenScans, models.AwardCatchSuspended},
		},
		{
			name:    "plain scan between milestones",
			prev:    models.StatsSnapshot{Scans: 6},
			outcome: verify.OutcomeValid,
			want:    []models.AwardKind{models.AwardScanAny},
		},
		{
			name:    "unregistered code",
			prev:    models.StatsSnapshot{Scans: 2},
			outcome: verify.OutcomeNotFound,
			want:    []models.AwardKind{models.AwardScanAny, models.AwardCatchInvalid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(AwardsForVerification(tt.prev, tt.outcome)))
		})
	}
}

func TestAwardsForComplaint(t *testing.T) {
	first := AwardsForComplaint(models.StatsSnapshot{})
	assert.Equal(t, []models.AwardKind{models.AwardSubmitComplaint, models.AwardFirstComplaintBonus}, kinds(first))

	later := AwardsForComplaint(models.StatsSnapshot{ComplaintsFiled: 3})
	assert.Equal(t, []models.AwardKind{models.AwardSubmitComplaint}, kinds(later))
}
