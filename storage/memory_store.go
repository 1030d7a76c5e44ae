package storage

import (
	"context"
	"sync"

	"metastore-scraper/models"
)

// MemoryStore keeps records in process, ordered by first insertion.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]models.Record
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]models.Record)}
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]models.Record)
	m.order = nil
	return nil
}

func (m *MemoryStore) Upsert(ctx context.Context, r *models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[r.ID]; !exists {
		m.order = append(m.order, r.ID)
	}
	m.docs[r.ID] = *r
	return nil
}

func (m *MemoryStore) FetchAll(ctx context.Context) ([]*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Record, 0, len(m.order))
	for _, id := range m.order {
		doc := m.docs[id]
		out = append(out, &doc)
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
