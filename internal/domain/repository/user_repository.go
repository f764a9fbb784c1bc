package repository

import (
	"context"
	"time"

	"github.com/oksasatya/clubhub/internal/domain/entity"
)

// UserRepository is the credential store.
//
// Implementations must enforce email and username uniqueness atomically
// (unique index or equivalent) and return apperror.ErrConflict on collision.
// Lookups that find nothing return apperror.ErrNotFound. PasswordHash is left
// empty on every read unless withDigest is true.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByEmailOrUsername(ctx context.Context, email, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string, withDigest bool) (*entity.User, error)
	GetByID(ctx context.Context, id string, withDigest bool) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) (*entity.User, error)
	Ping(ctx context.Context) error
}

// RoleAssigner is the out-of-band elevation path used by the seed command.
// No HTTP handler depends on it.
type RoleAssigner interface {
	SetRole(ctx context.Context, id string, role entity.Role) error
}
