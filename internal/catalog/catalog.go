// Package catalog provides the in-memory food catalog the rule matcher
// scans. Insertion order is preserved because matching is defined in
// catalog order.
package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwulff/glucose-go/internal/glucose"
	"github.com/jwulff/glucose-go/internal/storage"
)

// Memory is a mutation-safe, insertion-ordered food catalog.
type Memory struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]glucose.Food
}

// NewMemory creates an empty catalog.
func NewMemory() *Memory {
	return &Memory{byID: make(map[uuid.UUID]glucose.Food)}
}

// Load populates the catalog from persistent storage, replacing any
// current contents.
func (m *Memory) Load(ctx context.Context, store storage.Store) error {
	foods, err := store.GetFoods(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = m.order[:0]
	m.byID = make(map[uuid.UUID]glucose.Food, len(foods))
	for _, f := range foods {
		m.order = append(m.order, f.ID)
		m.byID[f.ID] = *f
	}
	return nil
}

// Add appends a food to the catalog. Re-adding an existing id is a no-op.
func (m *Memory) Add(f glucose.Food) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[f.ID]; ok {
		return
	}
	m.order = append(m.order, f.ID)
	m.byID[f.ID] = f
}

// Foods returns all foods in insertion order.
func (m *Memory) Foods() []glucose.Food {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]glucose.Food, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Get looks a food up by id.
func (m *Memory) Get(id uuid.UUID) (glucose.Food, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.byID[id]
	return f, ok
}

// Len returns the number of foods in the catalog.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
