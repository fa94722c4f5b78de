package storage

import (
	"context"
	"sync"
)

// MemoryAdapter is an in-process stock backend. It is the default for the
// reference server and the workhorse for handler and integration tests.
// Semantics mirror the Redis scripts: clamp at zero, missing items read as
// zero, the stored value is returned as authoritative.
type MemoryAdapter struct {
	mu    sync.Mutex
	stock map[string]int
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{stock: make(map[string]int)}
}

func (m *MemoryAdapter) SetStock(ctx context.Context, itemID string, value int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value < 0 {
		value = 0
	}
	m.stock[itemID] = value
	return value, nil
}

func (m *MemoryAdapter) ApplyDelta(ctx context.Context, itemID string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.stock[itemID] + delta
	if next < 0 {
		next = 0
	}
	m.stock[itemID] = next
	return next, nil
}

func (m *MemoryAdapter) GetStock(ctx context.Context, itemID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[itemID], nil
}
