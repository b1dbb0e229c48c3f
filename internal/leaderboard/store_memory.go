package leaderboard

import (
	"context"
	"sort"
	"sync"

	id "bisaathi/pkg/domain"
)

// InMemoryStore backs tests and local development. It doubles as a score
// recorder so memory deployments rank without Redis.
type InMemoryStore struct {
	mu     sync.RWMutex
	scores map[id.UserID]int
	names  map[id.UserID]string
}

func NewMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		scores: make(map[id.UserID]int),
		names:  make(map[id.UserID]string),
	}
}

// Record stores an absolute score, satisfying the gamify recorder interface.
func (s *InMemoryStore) Record(_ context.Context, userID id.UserID, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[userID] = score
	return nil
}

// SetName registers a display name for ranking rows.
func (s *InMemoryStore) SetName(userID id.UserID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[userID] = name
}

func (s *InMemoryStore) TopByScore(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.scores))
	for userID, score := range s.scores {
		entries = append(entries, Entry{UserID: userID, Name: s.names[userID], Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *InMemoryStore) NamesByID(_ context.Context, userIDs []id.UserID) (map[id.UserID]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.UserID]string, len(userIDs))
	for _, userID := range userIDs {
		if name, ok := s.names[userID]; ok {
			out[userID] = name
		}
	}
	return out, nil
}
