package store

import (
	"sync"

	"github.com/flashmart/stock-sync/internal/core/domain"
)

// ItemStore holds the authoritative-so-far stock view for every item being
// edited. It is the only shared mutable resource between the edit surfaces;
// all mutation goes through SetDisplay, Commit and Revert so renderers can
// never observe a half-applied edit.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]*domain.Item)}
}

// Load seeds items at page-load time, display and confirmed both set to the
// value the remote service reported.
func (s *ItemStore) Load(items ...domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		loaded := domain.NewItem(it.ID, it.ConfirmedStock)
		s.items[it.ID] = &loaded
	}
}

func (s *ItemStore) Get(id string) (domain.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return domain.Item{}, false
	}
	return *it, true
}

// SetDisplay applies an optimistic edit. ConfirmedStock is untouched.
// An unknown id creates a record with ConfirmedStock 0, matching the
// create-on-assignment behavior of the editing pages.
func (s *ItemStore) SetDisplay(id string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		it = &domain.Item{ID: id}
		s.items[id] = it
	}
	it.DisplayStock = domain.ClampStock(value)
}

// Commit records an authoritative value returned by the remote service,
// overwriting both display and confirmed. This is the single path by which
// a write becomes durable from this client's perspective.
func (s *ItemStore) Commit(id string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		it = &domain.Item{ID: id}
		s.items[id] = it
	}
	value = domain.ClampStock(value)
	it.DisplayStock = value
	it.ConfirmedStock = value
}

// Revert discards an unconfirmed optimistic edit, restoring the last value
// the remote service accepted.
func (s *ItemStore) Revert(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it, ok := s.items[id]; ok {
		it.DisplayStock = it.ConfirmedStock
	}
}

func (s *ItemStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns a snapshot for list rendering.
func (s *ItemStore) Items() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *it)
	}
	return out
}
