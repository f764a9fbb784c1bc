// Package memory is a process-local credential store used for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	"github.com/oksasatya/clubhub/internal/domain/repository"
)

// UserRepository keeps users in maps guarded by one mutex; the uniqueness
// check and the insert happen under the same lock.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*entity.User
	byEmail    map[string]string
	byUsername map[string]string
	now        func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*entity.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

// snapshot returns a copy so callers never share state with the store.
func snapshot(u *entity.User, withDigest bool) *entity.User {
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	if !withDigest {
		c.PasswordHash = ""
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return apperror.ErrUserExists
	}
	if _, ok := r.byUsername[u.Username]; ok {
		return apperror.ErrUserExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	r.byID[u.ID] = snapshot(u, true)
	r.byEmail[u.Email] = u.ID
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *UserRepository) FindByEmailOrUsername(_ context.Context, email, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byEmail[email]; ok {
		return snapshot(r.byID[id], false), nil
	}
	if id, ok := r.byUsername[username]; ok {
		return snapshot(r.byID[id], false), nil
	}
	return nil, apperror.ErrUserNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string, withDigest bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return snapshot(r.byID[id], withDigest), nil
}

func (r *UserRepository) GetByID(_ context.Context, id string, withDigest bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return snapshot(u, withDigest), nil
}

// mutate applies fn to the stored user under the write lock.
func (r *UserRepository) mutate(id string, fn func(u *entity.User)) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = r.now().UTC()
	return snapshot(u, false), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, patch entity.ProfilePatch) (*entity.User, error) {
	return r.mutate(id, patch.Apply)
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := r.mutate(id, func(u *entity.User) { u.PasswordHash = passwordHash })
	return err
}

func (r *UserRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	at = at.UTC()
	_, err := r.mutate(id, func(u *entity.User) { u.LastLogin = &at })
	return err
}

func (r *UserRepository) SetActive(_ context.Context, id string, active bool) (*entity.User, error) {
	return r.mutate(id, func(u *entity.User) { u.IsActive = active })
}

// SetRole is used by the seed command; there is no HTTP path to it.
func (r *UserRepository) SetRole(_ context.Context, id string, role entity.Role) error {
	_, err := r.mutate(id, func(u *entity.User) { u.Role = role })
	return err
}

func (r *UserRepository) Ping(context.Context) error { return nil }

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.RoleAssigner   = (*UserRepository)(nil)
)
