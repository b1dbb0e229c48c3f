package store

import (
	"context"
	"sync"

	"bisaathi/internal/gamify/models"
	id "bisaathi/pkg/domain"
)

// InMemorySnapshotStore backs tests and local development. Unknown users read
// as a zero snapshot, matching how a fresh account starts.
type InMemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[id.UserID]models.StatsSnapshot
}

func NewMemory() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{snapshots: make(map[id.UserID]models.StatsSnapshot)}
}

func (s *InMemorySnapshotStore) Get(_ context.Context, userID id.UserID) (models.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[userID].Clone(), nil
}

// Set stores absolute counter values, replacing the previous snapshot whole.
// Absolute semantics keep caller retries idempotent.
func (s *InMemorySnapshotStore) Set(_ context.Context, userID id.UserID, snap models.StatsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[userID] = snap.Clone()
	return nil
}

// InMemoryNotificationStore accumulates pending reward notices per user.
type InMemoryNotificationStore struct {
	mu      sync.RWMutex
	pending map[id.UserID][]models.Notification
}

func NewMemoryNotifications() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{pending: make(map[id.UserID][]models.Notification)}
}

func (s *InMemoryNotificationStore) Append(_ context.Context, userID id.UserID, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = append(s.pending[userID], n)
	return nil
}

func (s *InMemoryNotificationStore) List(_ context.Context, userID id.UserID) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification{}, s.pending[userID]...), nil
}

func (s *InMemoryNotificationStore) MarkAllSeen(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pending[userID] {
		s.pending[userID][i].Seen = true
	}
	return nil
}
