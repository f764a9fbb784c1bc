package application

import (
	"context"
	"errors"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	repo "github.com/oksasatya/clubhub/internal/domain/repository"
	"github.com/oksasatya/clubhub/pkg/validation"
)

// EnsureAdmin is the administrative elevation path. It promotes and
// reactivates the account registered under in.Email, or creates it as an
// admin when missing. The password of an existing account is left alone.
func EnsureAdmin(ctx context.Context, users repo.UserRepository, roles repo.RoleAssigner, hasher Hasher, in RegisterInput) (*entity.User, bool, error) {
	u, err := users.GetByEmail(ctx, in.Email, false)
	switch {
	case err == nil:
		if err := roles.SetRole(ctx, u.ID, entity.RoleAdmin); err != nil {
			return nil, false, err
		}
		u, err = users.SetActive(ctx, u.ID, true)
		return u, false, err
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, false, err
	}

	if err := validation.New().Struct(in); err != nil {
		return nil, false, apperror.Validation(validation.Summary(err))
	}
	digest, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, false, err
	}
	u = &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         entity.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	u.PasswordHash = ""
	return u, true, nil
}
