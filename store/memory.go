package store

import (
	"slices"
	"sync"

	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/query"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string          // values in insertion order
	byValue map[string]Record // value -> record
	ids     map[string]string // id -> value
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byValue: make(map[string]Record),
		ids:     make(map[string]string),
	}
}

func (m *MemoryStore) Insert(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.ids[rec.ID]; exists {
		return errors.Wrapf(errors.ErrConflict, "id %s", rec.ID)
	}
	m.ids[rec.ID] = rec.Value
	m.byValue[rec.Value] = rec.clone()
	m.order = append(m.order, rec.Value)
	return nil
}

func (m *MemoryStore) Get(value string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byValue[value]
	if !ok {
		return nil, nil
	}
	out := rec.clone()
	return &out, nil
}

func (m *MemoryStore) List(c query.Criteria) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Record, 0, len(m.order))
	for _, v := range m.order {
		rec := m.byValue[v]
		if c.Match(rec.Value, rec.Properties) {
			result = append(result, rec.clone())
		}
	}
	return result, nil
}

func (m *MemoryStore) Delete(value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byValue[value]
	if !ok {
		return false, nil
	}
	delete(m.byValue, value)
	delete(m.ids, rec.ID)
	if i := slices.Index(m.order, value); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return true, nil
}

func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
