package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	repo "github.com/oksasatya/clubhub/internal/domain/repository"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

var ErrDirectoryUnavailable = errors.New("member directory is not configured")

// MemberSearcher queries the member directory (search.UserIndexer).
type MemberSearcher interface {
	MemberIndexer
	SearchUsers(ctx context.Context, q string, size int) ([]entity.PublicProfile, error)
}

// DirectoryService backs the admin-only member endpoints.
type DirectoryService struct {
	Repo   repo.UserRepository
	Search MemberSearcher // optional
	Logger *logrus.Logger
}

func NewDirectoryService(r repo.UserRepository, search MemberSearcher, logger *logrus.Logger) *DirectoryService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &DirectoryService{Repo: r, Search: search, Logger: logger}
}

func (s *DirectoryService) SearchMembers(ctx context.Context, q string, size int) ([]entity.PublicProfile, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("q is required")
	}
	if s.Search == nil {
		return nil, ErrDirectoryUnavailable
	}
	return s.Search.SearchUsers(ctx, q, size)
}

// SetActive deactivates or reactivates a member. Records are never deleted.
// An admin cannot deactivate their own account.
func (s *DirectoryService) SetActive(ctx context.Context, actorID, userID string, active bool) (entity.PublicProfile, error) {
	if actorID == userID && !active {
		return entity.PublicProfile{}, apperror.Validation("you cannot deactivate your own account")
	}
	u, err := s.Repo.SetActive(ctx, userID, active)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "by": actorID, "active": active}).Info("member activation changed")
	if s.Search != nil {
		if err := s.Search.IndexUser(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index member failed")
		}
	}
	return u.Public(), nil
}
