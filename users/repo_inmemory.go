package users

import (
	"context"
	"sync"

	apperrors "github.com/devlog/devlog-server/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a map-backed principal store, used by the server
// bootstrap and by tests.
type InMemoryRepo struct {
	users  map[int64]*User
	emails map[string]int64
	names  map[string]int64
	nextID int64
	lock   sync.RWMutex
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		users:  make(map[int64]*User),
		emails: make(map[string]int64),
		names:  make(map[string]int64),
		nextID: 1,
	}
}

func (r *InMemoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	id, ok := r.emails[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return r.users[id], nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id int64) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	id, ok := r.names[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return r.users[id], nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, user *User) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	r.users[user.ID] = user
	r.emails[user.Email] = user.ID
	r.names[user.Username] = user.ID
	return nil
}
