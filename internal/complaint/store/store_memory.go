package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"bisaathi/internal/complaint/models"
	id "bisaathi/pkg/domain"
	"bisaathi/pkg/platform/sentinel"
)

// InMemoryComplaintStore backs tests and local development. The mutex makes
// ClaimResolutionBonus atomic the same way the conditional UPDATE does in the
// PostgreSQL store.
type InMemoryComplaintStore struct {
	mu         sync.RWMutex
	complaints map[id.ComplaintID]*models.Complaint
	order      []id.ComplaintID
}

func NewMemory() *InMemoryComplaintStore {
	return &InMemoryComplaintStore{complaints: make(map[id.ComplaintID]*models.Complaint)}
}

func (s *InMemoryComplaintStore) Create(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.complaints[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.complaints[c.ID] = c.Clone()
	s.order = append(s.order, c.ID)
	return nil
}

func (s *InMemoryComplaintStore) FindByID(_ context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.complaints[complaintID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// List returns complaints newest first, filtered.
func (s *InMemoryComplaintStore) List(_ context.Context, filter models.Filter) ([]*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Complaint
	for i := len(s.order) - 1; i >= 0; i-- {
		c := s.complaints[s.order[i]]
		if matches(c, filter) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryComplaintStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Complaint
	for i := len(s.order) - 1; i >= 0; i-- {
		c := s.complaints[s.order[i]]
		if c.UserID != nil && *c.UserID == userID {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryComplaintStore) UpdateStatus(_ context.Context, complaintID id.ComplaintID, status models.Status, adminNotes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[complaintID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Status = status
	// Empty notes leave the previously recorded notes in place.
	if adminNotes != "" {
		c.AdminNotes = adminNotes
	}
	return nil
}

// ClaimResolutionBonus flips points_awarded false→true atomically and reports
// whether this call won the claim. A second call returns false, nil.
func (s *InMemoryComplaintStore) ClaimResolutionBonus(_ context.Context, complaintID id.ComplaintID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[complaintID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if c.PointsAwarded {
		return false, nil
	}
	c.PointsAwarded = true
	return true, nil
}

func (s *InMemoryComplaintStore) CountByStatus(_ context.Context) (models.StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts models.StatusCounts
	for _, c := range s.complaints {
		counts.Total++
		switch c.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusReviewing:
			counts.Reviewing++
		case models.StatusResolved:
			counts.Resolved++
		case models.StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

// CountByDay buckets submissions per calendar day over the trailing window.
func (s *InMemoryComplaintStore) CountByDay(_ context.Context, days int) ([]models.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	buckets := make(map[string]int)
	for _, c := range s.complaints {
		if c.SubmittedAt.Before(cutoff) {
			continue
		}
		buckets[c.SubmittedAt.Format("2006-01-02")]++
	}

	out := make([]models.DayCount, 0, len(buckets))
	for day, count := range buckets {
		out = append(out, models.DayCount{Day: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// CountResolvedByUser tallies resolved filings per owner.
func (s *InMemoryComplaintStore) CountResolvedByUser(_ context.Context) (map[id.UserID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resolved := make(map[id.UserID]int)
	for _, c := range s.complaints {
		if c.Status == models.StatusResolved && c.UserID != nil {
			resolved[*c.UserID]++
		}
	}
	return resolved, nil
}

func matches(c *models.Complaint, filter models.Filter) bool {
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	if filter.IssueType != "" && c.IssueType != filter.IssueType {
		return false
	}
	if filter.Anonymous != nil && *filter.Anonymous != (c.UserID == nil) {
		return false
	}
	return true
}
