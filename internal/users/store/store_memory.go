package store

import (
	"context"
	"sort"
	"sync"

	"bistro/internal/storage"
	"bistro/internal/users/models"
	"bistro/pkg/domain"
	"bistro/pkg/platform/sentinel"
)

// InMemoryUserStore backs tests and local runs without a database. Email is
// unique, as in the postgres store.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[domain.UserID]*models.User
	byEmail map[string]domain.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[domain.UserID]*models.User),
		byEmail: make(map[string]domain.UserID),
	}
}

func (s *InMemoryUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byEmail[user.Email]; ok && existing != user.ID {
		return sentinel.ErrConflict
	}
	clone := *user
	s.users[user.ID] = &clone
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

func (s *InMemoryUserStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryUserStore) SetRole(_ context.Context, id domain.UserID, role domain.Role) (storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return storage.Updated(0, 0), nil
	}
	if user.Role == string(role) {
		return storage.Updated(1, 0), nil
	}
	user.Role = string(role)
	return storage.Updated(1, 1), nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, id domain.UserID) (storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return storage.Deleted(0), nil
	}
	delete(s.byEmail, user.Email)
	delete(s.users, id)
	return storage.Deleted(1), nil
}

func (s *InMemoryUserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
