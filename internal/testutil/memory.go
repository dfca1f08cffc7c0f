// Package testutil provides shared helpers and fakes for tests.
package testutil

import (
	"context"
	"sync"

	"github.com/avatarly/avatarly/internal/model"
	"github.com/avatarly/avatarly/internal/repository"
)

// MemoryUserStore is an in-memory user collection keyed by email.
// It enforces email uniqueness like the real store's unique index.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]model.User

	// FindErr and CreateErr, when set, are returned by the matching method.
	FindErr   error
	CreateErr error

	finds int
}

// NewMemoryUserStore returns an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User)}
}

// GetUserByEmail returns a copy of the stored user or repository.ErrUserNotFound.
func (s *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finds++
	if s.FindErr != nil {
		return nil, s.FindErr
	}

	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// CreateUser stores a copy of user or returns repository.ErrEmailExists.
func (s *MemoryUserStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	s.users[user.Email] = *user
	return nil
}

// Put stores user without the uniqueness check.
func (s *MemoryUserStore) Put(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = *user
}

// Len returns the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Finds returns how many lookups hit the store.
func (s *MemoryUserStore) Finds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds
}
