package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bisaathi/internal/complaint/models"
	id "bisaathi/pkg/domain"
	"bisaathi/pkg/platform/sentinel"
)

func newComplaint(userID *id.UserID) *models.Complaint {
	return &models.Complaint{
		ID:            id.NewComplaintID(),
		CMLCode:       "CM/L-1234567",
		ProductName:   "Pressure Cooker 5L",
		IssueType:     models.IssueExpired,
		ComplaintText: "Licence lapsed.",
		Status:        models.StatusPending,
		UserID:        userID,
	}
}

func TestCreateAndFindClonesState(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	c := newComplaint(nil)
	require.NoError(t, s.Create(ctx, c))

	got, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the store.
	got.Status = models.StatusResolved
	again, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status)
}

func TestFindUnknownIsNotFound(t *testing.T) {
	s := NewMemory()
	_, err := s.FindByID(context.Background(), id.NewComplaintID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestDuplicateCreateConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	c := newComplaint(nil)
	require.NoError(t, s.Create(ctx, c))
	assert.ErrorIs(t, s.Create(ctx, c), sentinel.ErrConflict)
}

func TestUpdateStatusKeepsNotesWhenNoneProvided(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	c := newComplaint(nil)
	require.NoError(t, s.Create(ctx, c))

	require.NoError(t, s.UpdateStatus(ctx, c.ID, models.StatusReviewing, "checked batch 42"))
	require.NoError(t, s.UpdateStatus(ctx, c.ID, models.StatusResolved, ""))

	got, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Equal(t, "checked batch 42", got.AdminNotes, "a transition without notes retains earlier notes")

	require.NoError(t, s.UpdateStatus(ctx, c.ID, models.StatusResolved, "closed after recheck"))
	got, err = s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed after recheck", got.AdminNotes)
}

func TestClaimResolutionBonusIsSingleShot(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	userID := id.NewUserID()
	c := newComplaint(&userID)
	require.NoError(t, s.Create(ctx, c))

	claimed, err := s.ClaimResolutionBonus(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	again, err := s.ClaimResolutionBonus(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, again)

	got, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.PointsAwarded)
}

func TestListNewestFirstWithFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	userID := id.NewUserID()

	first := newComplaint(&userID)
	second := newComplaint(nil)
	second.IssueType = models.IssueSuspended
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))

	all, err := s.List(ctx, models.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	expired, err := s.List(ctx, models.Filter{IssueType: models.IssueExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, first.ID, expired[0].ID)

	owned := false
	withOwner, err := s.List(ctx, models.Filter{Anonymous: &owned})
	require.NoError(t, err)
	require.Len(t, withOwner, 1)
	assert.Equal(t, first.ID, withOwner[0].ID)
}

func TestCountResolvedByUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	userID := id.NewUserID()

	a := newComplaint(&userID)
	b := newComplaint(&userID)
	anon := newComplaint(nil)
	for _, c := range []*models.Complaint{a, b, anon} {
		require.NoError(t, s.Create(ctx, c))
	}
	require.NoError(t, s.UpdateStatus(ctx, a.ID, models.StatusResolved, ""))
	require.NoError(t, s.UpdateStatus(ctx, anon.ID, models.StatusResolved, ""))

	resolved, err := s.CountResolvedByUser(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1, "anonymous resolutions are not attributed")
	assert.Equal(t, 1, resolved[userID])
}

func TestCountByStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	a := newComplaint(nil)
	b := newComplaint(nil)
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))
	require.NoError(t, s.UpdateStatus(ctx, a.ID, models.StatusRejected, "no evidence"))

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 1, counts.Pending)
	assert.Equal(t, 1, counts.Rejected)
}
