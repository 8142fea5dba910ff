package repository

import (
	"errors"
	"sync"

	"fleet-dashboard/internal/models"
)

var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository is the set of identities allowed to sign in.
type UserRepository struct {
	mu    sync.RWMutex
	users []models.User
	seq   idSequence
}

func NewUserRepository(users []models.User) *UserRepository {
	r := &UserRepository{users: append([]models.User(nil), users...)}
	for _, u := range r.users {
		r.seq.observe(u.ID)
	}
	return r
}

// FindByUsername matches usernames exactly.
func (r *UserRepository) FindByUsername(username string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

// Create appends a new user. The uniqueness check and the append happen
// under one lock.
func (r *UserRepository) Create(username string, role models.Role) (models.User, error) {
	if username == "" {
		return models.User{}, errors.New("username is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return models.User{}, ErrDuplicateUsername
		}
	}

	user := models.User{ID: r.seq.next(), Username: username, Role: role}
	r.users = append(r.users, user)
	return user, nil
}

func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
