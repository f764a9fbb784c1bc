package application

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	repo "github.com/oksasatya/clubhub/internal/domain/repository"
	"github.com/oksasatya/clubhub/pkg/helpers"
	"github.com/oksasatya/clubhub/pkg/validation"
)

// Hasher derives and checks password digests (helpers.PasswordHasher).
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer signs session tokens (helpers.TokenManager).
type TokenIssuer interface {
	Issue(subjectID string, role entity.Role) (string, time.Time, error)
}

// Notifier queues account emails (queue.Notifier).
type Notifier interface {
	Welcome(ctx context.Context, u *entity.User) error
	PasswordChanged(ctx context.Context, u *entity.User, ip string) error
}

// MemberIndexer keeps the member directory in sync (search.UserIndexer).
type MemberIndexer interface {
	IndexUser(ctx context.Context, u *entity.User) error
}

type RegisterInput struct {
	Username   string `json:"username" binding:"required,username"`
	Email      string `json:"email" binding:"required,email,max=254"`
	Password   string `json:"password" binding:"required,pwd"`
	FirstName  string `json:"firstName" binding:"omitempty,name"`
	LastName   string `json:"lastName" binding:"omitempty,name"`
	StudentID  string `json:"studentId" binding:"omitempty,max=32"`
	Department string `json:"department" binding:"omitempty,max=128"`
	Year       string `json:"year" binding:"omitempty,max=16"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput holds the self-service fields; nil leaves a field unchanged.
type UpdateProfileInput struct {
	FirstName  *string `json:"firstName" binding:"omitempty,name"`
	LastName   *string `json:"lastName" binding:"omitempty,name"`
	Department *string `json:"department" binding:"omitempty,max=128"`
	Year       *string `json:"year" binding:"omitempty,max=16"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      entity.PublicProfile `json:"user"`
}

type AuthService struct {
	Repo     repo.UserRepository
	Hasher   Hasher
	Tokens   TokenIssuer
	Notifier Notifier      // optional
	Indexer  MemberIndexer // optional
	Metrics  *helpers.Metrics
	Logger   *logrus.Logger

	validate *validator.Validate
	now      func() time.Time
	// verified against when the email is unknown so both login failures
	// cost one bcrypt comparison
	decoy string
}

func NewAuthService(r repo.UserRepository, hasher Hasher, tokens TokenIssuer, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	s := &AuthService{
		Repo:     r,
		Hasher:   hasher,
		Tokens:   tokens,
		Logger:   logger,
		validate: validation.New(),
		now:      time.Now,
	}
	if hasher != nil {
		d, err := hasher.Hash("decoy-password-for-unknown-email")
		if err != nil {
			logger.WithError(err).Error("hash decoy digest failed")
		}
		s.decoy = d
	}
	return s
}

func (s *AuthService) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return apperror.Validation(validation.Summary(err))
	}
	return nil
}

// Register creates a member account and signs the first token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := s.check(in); err != nil {
		s.Metrics.Registration(helpers.OutcomeInvalid)
		return nil, err
	}

	existing, err := s.Repo.FindByEmailOrUsername(ctx, in.Email, in.Username)
	switch {
	case err == nil && existing != nil:
		s.Metrics.Registration(helpers.OutcomeConflict)
		return nil, apperror.ErrUserExists
	case err != nil && !errors.Is(err, apperror.ErrNotFound):
		s.Metrics.Registration(helpers.OutcomeError)
		s.Logger.WithError(err).Error("register: lookup failed")
		return nil, err
	}

	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		s.Metrics.Registration(helpers.OutcomeError)
		return nil, err
	}

	u := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         entity.RoleMember,
		Department:   in.Department,
		StudentID:    in.StudentID,
		Year:         in.Year,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.Metrics.Registration(helpers.OutcomeConflict)
			return nil, err
		}
		s.Metrics.Registration(helpers.OutcomeError)
		s.Logger.WithError(err).Error("register: create failed")
		return nil, err
	}
	u.PasswordHash = ""

	token, exp, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		s.Metrics.Registration(helpers.OutcomeError)
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("register: sign token failed")
		return nil, err
	}

	s.Metrics.Registration(helpers.OutcomeSuccess)
	s.Logger.WithField("user_id", u.ID).Info("user registered")

	if s.Notifier != nil {
		if nErr := s.Notifier.Welcome(ctx, u); nErr != nil {
			s.Logger.WithError(nErr).WithField("user_id", u.ID).Warn("queue welcome email failed")
		}
	}
	s.index(ctx, u)

	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

// Login checks credentials. Unknown email and wrong password produce the
// same error; the specific cause is only logged.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := s.check(in); err != nil {
		s.Metrics.Login(helpers.OutcomeInvalid)
		return nil, err
	}

	u, err := s.Repo.GetByEmail(ctx, in.Email, true)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.Hasher.Verify(in.Password, s.decoy)
			s.loginFailed(helpers.OutcomeUnknown, "")
			return nil, apperror.ErrInvalidCredentials
		}
		s.Metrics.Login(helpers.OutcomeError)
		s.Logger.WithError(err).Error("login: lookup failed")
		return nil, err
	}

	if !u.IsActive {
		s.loginFailed(helpers.OutcomeInactive, u.ID)
		return nil, apperror.ErrAccountDeactivated
	}
	if !s.Hasher.Verify(in.Password, u.PasswordHash) {
		s.loginFailed(helpers.OutcomeBadPassword, u.ID)
		return nil, apperror.ErrInvalidCredentials
	}
	u.PasswordHash = ""

	now := s.now().UTC()
	if err := s.Repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.Metrics.Login(helpers.OutcomeError)
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("login: touch last login failed")
		return nil, err
	}
	u.LastLogin = &now

	token, exp, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		s.Metrics.Login(helpers.OutcomeError)
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("login: sign token failed")
		return nil, err
	}

	s.Metrics.Login(helpers.OutcomeSuccess)
	s.Logger.WithField("user_id", u.ID).Info("user logged in")
	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

func (s *AuthService) loginFailed(cause, userID string) {
	s.Metrics.Login(cause)
	fields := logrus.Fields{"cause": cause}
	if userID != "" {
		fields["user_id"] = userID
	}
	s.Logger.WithFields(fields).Warn("login rejected")
}

func (s *AuthService) GetProfile(ctx context.Context, subjectID string) (entity.PublicProfile, error) {
	u, err := s.Repo.GetByID(ctx, subjectID, false)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	return u.Public(), nil
}

// UpdateProfile applies the self-service whitelist. An empty patch returns
// the current profile unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, subjectID string, in UpdateProfileInput) (entity.PublicProfile, error) {
	if err := s.check(in); err != nil {
		return entity.PublicProfile{}, err
	}
	patch := entity.ProfilePatch{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Department: in.Department,
		Year:       in.Year,
	}
	if patch.Empty() {
		return s.GetProfile(ctx, subjectID)
	}

	u, err := s.Repo.UpdateProfile(ctx, subjectID, patch)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	s.Logger.WithField("user_id", u.ID).Info("profile updated")
	s.index(ctx, u)
	return u.Public(), nil
}

// ChangePassword re-proves the current password before storing a new digest.
// ip is only used for the notification email.
func (s *AuthService) ChangePassword(ctx context.Context, subjectID string, in ChangePasswordInput, ip string) error {
	if err := s.check(in); err != nil {
		s.Metrics.PasswordChange(helpers.OutcomeInvalid)
		return err
	}

	u, err := s.Repo.GetByID(ctx, subjectID, true)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.Metrics.PasswordChange(helpers.OutcomeError)
		}
		return err
	}
	if !u.IsActive {
		s.Metrics.PasswordChange(helpers.OutcomeInactive)
		return apperror.ErrAccountDeactivated
	}
	if !s.Hasher.Verify(in.CurrentPassword, u.PasswordHash) {
		s.Metrics.PasswordChange(helpers.OutcomeBadPassword)
		s.Logger.WithField("user_id", u.ID).Warn("password change rejected: current password mismatch")
		return apperror.ErrCurrentPasswordMismatch
	}

	digest, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		s.Metrics.PasswordChange(helpers.OutcomeError)
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, digest); err != nil {
		s.Metrics.PasswordChange(helpers.OutcomeError)
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("update password failed")
		return err
	}
	u.PasswordHash = ""

	s.Metrics.PasswordChange(helpers.OutcomeSuccess)
	s.Logger.WithField("user_id", u.ID).Info("password changed")
	if s.Notifier != nil {
		if nErr := s.Notifier.PasswordChanged(ctx, u, ip); nErr != nil {
			s.Logger.WithError(nErr).WithField("user_id", u.ID).Warn("queue password changed email failed")
		}
	}
	return nil
}

func (s *AuthService) index(ctx context.Context, u *entity.User) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexUser(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index member failed")
	}
}
