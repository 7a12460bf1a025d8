package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository implements UserRepository with an in-process map, for
// tests and DB-less operation.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) Upsert(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
	} else {
		u.CreatedAt = time.Now()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) FindByPrefix(_ context.Context, prefix string) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []User
	for _, u := range r.users {
		if u.TokenPrefix == prefix {
			users = append(users, u)
		}
	}
	return users, nil
}
