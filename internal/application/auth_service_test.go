package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/clubhub/config"
	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	"github.com/oksasatya/clubhub/internal/infrastructure/memory"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

type recordingNotifier struct {
	mu      sync.Mutex
	welcome []string
	changed []string
	err     error
}

func (n *recordingNotifier) Welcome(_ context.Context, u *entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcome = append(n.welcome, u.Email)
	return n.err
}

func (n *recordingNotifier) PasswordChanged(_ context.Context, u *entity.User, ip string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, u.Email+"@"+ip)
	return n.err
}

type recordingIndexer struct {
	mu   sync.Mutex
	docs map[string]*entity.User
}

func (x *recordingIndexer) IndexUser(_ context.Context, u *entity.User) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.docs == nil {
		x.docs = map[string]*entity.User{}
	}
	c := *u
	x.docs[u.ID] = &c
	return nil
}

func (x *recordingIndexer) SearchUsers(_ context.Context, q string, _ int) ([]entity.PublicProfile, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var out []entity.PublicProfile
	for _, u := range x.docs {
		if u.Username == q {
			out = append(out, u.Public())
		}
	}
	return out, nil
}

type fixture struct {
	svc      *AuthService
	repo     *memory.UserRepository
	tokens   *helpers.TokenManager
	hasher   *helpers.PasswordHasher
	notifier *recordingNotifier
	indexer  *recordingIndexer
	metrics  *helpers.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     memory.NewUserRepository(),
		tokens:   helpers.NewTokenManager(config.TokenConfig{Secret: []byte("test-secret"), TTL: 7 * 24 * time.Hour}),
		hasher:   helpers.NewPasswordHasher(bcrypt.MinCost),
		notifier: &recordingNotifier{},
		indexer:  &recordingIndexer{},
		metrics:  helpers.NewMetrics("test"),
	}
	f.svc = NewAuthService(f.repo, f.hasher, f.tokens, nil)
	f.svc.Notifier = f.notifier
	f.svc.Indexer = f.indexer
	f.svc.Metrics = f.metrics
	return f
}

func aliceInput() RegisterInput {
	return RegisterInput{Username: "alice", Email: "a@x.com", Password: "Secr3t!"}
}

func (f *fixture) register(t *testing.T, in RegisterInput) *AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	return res
}

func TestRegister_IssuesTokenForNewMember(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, aliceInput())

	require.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, entity.RoleMember, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.Nil(t, res.User.LastLogin)

	id, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.SubjectID)
	assert.Equal(t, entity.RoleMember, id.Role)

	stored, err := f.repo.GetByID(context.Background(), res.User.ID, true)
	require.NoError(t, err)
	assert.NotEqual(t, "Secr3t!", stored.PasswordHash)
	assert.True(t, f.hasher.Verify("Secr3t!", stored.PasswordHash))

	assert.Equal(t, []string{"a@x.com"}, f.notifier.welcome)
	require.Contains(t, f.indexer.docs, res.User.ID)
	assert.Empty(t, f.indexer.docs[res.User.ID].PasswordHash)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Registrations.WithLabelValues(helpers.OutcomeSuccess)))
}

func TestRegister_Conflicts(t *testing.T) {
	f := newFixture(t)
	f.register(t, aliceInput())

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"same email, different username", RegisterInput{Username: "alice2", Email: "a@x.com", Password: "Secr3t!"}},
		{"same username, different email", RegisterInput{Username: "alice", Email: "b@x.com", Password: "Secr3t!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperror.ErrConflict)
		})
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Registrations.WithLabelValues(helpers.OutcomeConflict)))
}

func TestRegister_ConcurrentSameEmailSucceedsOnce(t *testing.T) {
	f := newFixture(t)

	var ok, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := aliceInput()
			in.Username = "alice" + string(rune('a'+i))
			_, err := f.svc.Register(context.Background(), in)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, apperror.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(15), conflicts.Load())
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Username: "alice", Password: "Secr3t!"}},
		{"bad email", RegisterInput{Username: "alice", Email: "nope", Password: "Secr3t!"}},
		{"short password", RegisterInput{Username: "alice", Email: "a@x.com", Password: "123"}},
		{"short username", RegisterInput{Username: "al", Email: "a@x.com", Password: "Secr3t!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
	_, err := f.repo.GetByEmail(context.Background(), "a@x.com", false)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRegister_NotificationFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("broker down")

	res, err := f.svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return at }

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "Secr3t!"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	require.NotNil(t, res.User.LastLogin)
	assert.True(t, at.Equal(*res.User.LastLogin))

	id, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.SubjectID)

	stored, err := f.repo.GetByID(context.Background(), reg.User.ID, false)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, at.Equal(*stored.LastLogin))
}

func TestLogin_FailuresAreUniform(t *testing.T) {
	f := newFixture(t)
	f.register(t, aliceInput())

	_, wrongPassword := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong!!"})
	_, unknownEmail := f.svc.Login(context.Background(), LoginInput{Email: "nobody@x.com", Password: "Secr3t!"})

	require.ErrorIs(t, wrongPassword, apperror.ErrAuthenticationFailed)
	require.ErrorIs(t, unknownEmail, apperror.ErrAuthenticationFailed)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues(helpers.OutcomeBadPassword)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues(helpers.OutcomeUnknown)))

	stored, err := f.repo.GetByEmail(context.Background(), "a@x.com", false)
	require.NoError(t, err)
	assert.Nil(t, stored.LastLogin)
}

type countingHasher struct {
	Hasher
	hashes   atomic.Int32
	verifies atomic.Int32
}

func (h *countingHasher) Hash(plain string) (string, error) {
	h.hashes.Add(1)
	return h.Hasher.Hash(plain)
}

func (h *countingHasher) Verify(plain, digest string) bool {
	h.verifies.Add(1)
	return h.Hasher.Verify(plain, digest)
}

func TestLogin_UnknownEmailCostsOneComparison(t *testing.T) {
	f := newFixture(t)
	f.register(t, aliceInput())

	h := &countingHasher{Hasher: f.hasher}
	svc := NewAuthService(f.repo, h, f.tokens, nil)
	require.Equal(t, int32(1), h.hashes.Load())
	require.NotEmpty(t, svc.decoy)

	_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@x.com", Password: "Secr3t!"})
	require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	assert.Equal(t, int32(1), h.hashes.Load())
	assert.Equal(t, int32(1), h.verifies.Load())

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong!!"})
	require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	assert.Equal(t, int32(1), h.hashes.Load())
	assert.Equal(t, int32(2), h.verifies.Load())
}

func TestLogin_DeactivatedIsRefusedRegardlessOfPassword(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())
	_, err := f.repo.SetActive(context.Background(), reg.User.ID, false)
	require.NoError(t, err)

	for _, pw := range []string{"Secr3t!", "wrong!!"} {
		_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: pw})
		assert.ErrorIs(t, err, apperror.ErrAccountDeactivated)
		assert.ErrorIs(t, err, apperror.ErrAuthenticationFailed)
	}
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())

	p, err := f.svc.GetProfile(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.Email)

	_, err = f.svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfile_OnlyWhitelistedFields(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())

	first, dept := "Alice", "Mathematics"
	p, err := f.svc.UpdateProfile(context.Background(), reg.User.ID, UpdateProfileInput{FirstName: &first, Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.FirstName)
	assert.Equal(t, "Mathematics", p.Department)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, entity.RoleMember, p.Role)
	assert.Equal(t, "Mathematics", f.indexer.docs[reg.User.ID].Department)

	same, err := f.svc.UpdateProfile(context.Background(), reg.User.ID, UpdateProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", same.FirstName)

	long := string(make([]byte, 65))
	_, err = f.svc.UpdateProfile(context.Background(), reg.User.ID, UpdateProfileInput{LastName: &long})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestChangePassword_WrongCurrentLeavesDigest(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())
	before, err := f.repo.GetByID(context.Background(), reg.User.ID, true)
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), reg.User.ID, ChangePasswordInput{CurrentPassword: "wrong!!", NewPassword: "N3wPass!"}, "10.0.0.1")
	require.ErrorIs(t, err, apperror.ErrCurrentPasswordMismatch)

	after, err := f.repo.GetByID(context.Background(), reg.User.ID, true)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Empty(t, f.notifier.changed)
}

func TestChangePassword_Success(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())

	err := f.svc.ChangePassword(context.Background(), reg.User.ID, ChangePasswordInput{CurrentPassword: "Secr3t!", NewPassword: "N3wPass!"}, "10.0.0.1")
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "Secr3t!"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	_, err = f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "N3wPass!"})
	assert.NoError(t, err)

	assert.Equal(t, []string{"a@x.com@10.0.0.1"}, f.notifier.changed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PasswordChanges.WithLabelValues(helpers.OutcomeSuccess)))
}

func TestChangePassword_RefusesDeactivated(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())
	_, err := f.repo.SetActive(context.Background(), reg.User.ID, false)
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), reg.User.ID, ChangePasswordInput{CurrentPassword: "Secr3t!", NewPassword: "N3wPass!"}, "")
	assert.ErrorIs(t, err, apperror.ErrAccountDeactivated)
}

func TestChangePassword_ValidatesNewPassword(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())

	err := f.svc.ChangePassword(context.Background(), reg.User.ID, ChangePasswordInput{CurrentPassword: "Secr3t!", NewPassword: "abc"}, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
