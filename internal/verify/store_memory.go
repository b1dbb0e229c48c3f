package verify

import (
	"context"
	"sync"
	"time"

	"bisaathi/pkg/platform/sentinel"
)

// InMemoryProductStore backs tests and local development with a seeded
// registry.
type InMemoryProductStore struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewMemoryStore() *InMemoryProductStore {
	return &InMemoryProductStore{products: make(map[string]Product)}
}

// NewSeededMemoryStore returns a registry preloaded with a handful of
// representative rows covering every outcome.
func NewSeededMemoryStore() *InMemoryProductStore {
	s := NewMemoryStore()
	future := time.Now().AddDate(2, 0, 0)
	past := time.Now().AddDate(-1, 0, 0)
	for _, p := range []Product{
		{CMLCode: "CM/L-1234567", ProductName: "Steel Water Bottle 1L", Manufacturer: "Sharma Metals", Expiry: &future, Status: OutcomeValid},
		{CMLCode: "CM/L-7654321", ProductName: "Pressure Cooker 5L", Manufacturer: "Anand Appliances", Expiry: &past, Status: OutcomeValid},
		{CMLCode: "CM/L-2468013", ProductName: "Electric Kettle", Manufacturer: "Bright Electricals", Expiry: &future, Status: OutcomeSuspended},
		{CMLCode: "CM/L-9876543", ProductName: "LPG Hose Pipe", Manufacturer: "Secure Gas Fittings", Expiry: &future, Status: OutcomeValid},
	} {
		s.Put(p)
	}
	return s
}

func (s *InMemoryProductStore) Put(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.CMLCode] = p
}

func (s *InMemoryProductStore) FindByCode(_ context.Context, code string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[code]
	if !ok {
		return Product{}, sentinel.ErrNotFound
	}
	return p, nil
}
