package store

import (
	"context"
	"strings"
	"sync"

	"bisaathi/internal/auth/models"
	id "bisaathi/pkg/domain"
	"bisaathi/pkg/platform/sentinel"
)

// InMemoryUserStore backs tests and local development.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]models.User
	byEmail map[string]id.UserID
}

func NewMemory() *InMemoryUserStore {
	return &InMemoryUserStore{
		byID:    make(map[id.UserID]models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	s.byID[user.ID] = user
	s.byEmail[key] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[userID]
	if !ok {
		return models.User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return models.User{}, sentinel.ErrNotFound
	}
	return s.byID[userID], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
