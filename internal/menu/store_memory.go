package menu

import (
	"context"
	"slices"
	"sync"

	"bistro/internal/storage"
	"bistro/pkg/domain"
	"bistro/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.MenuItemID]*Item
	order []domain.MenuItemID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.MenuItemID]*Item)}
}

func (s *InMemoryStore) List(_ context.Context) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Item, 0, len(s.order))
	for _, id := range s.order {
		clone := *s.items[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.MenuItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *InMemoryStore) Insert(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *item
	s.items[item.ID] = &clone
	s.order = append(s.order, item.ID)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, item *Item) (storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[item.ID]
	if !ok {
		return storage.Updated(0, 0), nil
	}
	if *existing == *item {
		return storage.Updated(1, 0), nil
	}
	clone := *item
	s.items[item.ID] = &clone
	return storage.Updated(1, 1), nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.MenuItemID) (storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return storage.Deleted(0), nil
	}
	delete(s.items, id)
	if idx := slices.Index(s.order, id); idx >= 0 {
		s.order = slices.Delete(s.order, idx, idx+1)
	}
	return storage.Deleted(1), nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}
