package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bisaathi/pkg/domain"
)

func TestTopFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	alice := id.NewUserID()
	bob := id.NewUserID()
	carol := id.NewUserID()
	require.NoError(t, store.Record(ctx, alice, 150))
	require.NoError(t, store.Record(ctx, bob, 300))
	require.NoError(t, store.Record(ctx, carol, 75))
	store.SetName(bob, "Bob")

	svc, err := New(store)
	require.NoError(t, err)

	top, err := svc.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, bob, top[0].UserID)
	assert.Equal(t, "Bob", top[0].Name)
	assert.Equal(t, 300, top[0].Score)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, alice, top[1].UserID)
	assert.Equal(t, 2, top[1].Rank)
}

func TestTopDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, err := New(store)
	require.NoError(t, err)

	top, err := svc.Top(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestRecordWithoutCacheIsNoop(t *testing.T) {
	svc, err := New(NewMemoryStore())
	require.NoError(t, err)
	assert.NoError(t, svc.Record(context.Background(), id.NewUserID(), 50))
}

func TestRecordIsAbsolute(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, err := New(store)
	require.NoError(t, err)

	userID := id.NewUserID()
	require.NoError(t, store.Record(ctx, userID, 50))
	require.NoError(t, store.Record(ctx, userID, 40))

	top, err := svc.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 40, top[0].Score, "a replayed lower score overwrites, never adds")
}
