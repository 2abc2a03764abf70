package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recipebox/recipe-service/internal/recipe"
)

// MemoryRepo is an in-memory repository used for local runs and unit tests.
// Stored records are copied on the way in and out.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*recipe.Recipe
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*recipe.Recipe)}
}

func (m *MemoryRepo) Create(_ context.Context, r *recipe.Recipe) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.store[r.ID] = r.Clone()
	return r.ID, nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*recipe.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.store[id]; ok {
		return r.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(_ context.Context) ([]*recipe.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*recipe.Recipe, 0, len(m.store))
	for _, r := range m.store {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, fields map[string]any, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	r.Apply(fields, updatedAt)
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) Ping(context.Context) error { return nil }
