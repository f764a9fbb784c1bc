package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/clubhub/config"
	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
)

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestTokens(t *testing.T) *TokenManager {
	t.Helper()
	return NewTokenManager(config.TokenConfig{Secret: []byte("test-secret"), TTL: 7 * 24 * time.Hour}).WithClock(fixedClock(issuedAt))
}

func TestTokenManager_IssueVerifyRoundTrip(t *testing.T) {
	m := newTestTokens(t)

	tok, exp, err := m.Issue("user-1", entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(7*24*time.Hour), exp)

	id, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, entity.Identity{SubjectID: "user-1", Role: entity.RoleAdmin}, id)
}

func TestTokenManager_LifetimeWindow(t *testing.T) {
	m := newTestTokens(t)
	tok, _, err := m.Issue("user-1", entity.RoleMember)
	require.NoError(t, err)

	ttl := m.TTL()
	accepted := []time.Duration{0, time.Second, ttl / 2, ttl - time.Second}
	for _, d := range accepted {
		_, err := m.WithClock(fixedClock(issuedAt.Add(d))).Verify(tok)
		assert.NoError(t, err, "offset %v", d)
	}

	rejected := []time.Duration{ttl, ttl + time.Second, 30 * 24 * time.Hour}
	for _, d := range rejected {
		_, err := m.WithClock(fixedClock(issuedAt.Add(d))).Verify(tok)
		assert.ErrorIs(t, err, apperror.ErrTokenExpired, "offset %v", d)
		assert.ErrorIs(t, err, apperror.ErrAuthenticationFailed)
	}
}

func TestTokenManager_SubSecondIssueKeepsFullLifetime(t *testing.T) {
	at := issuedAt.Add(900 * time.Millisecond)
	m := newTestTokens(t).WithClock(fixedClock(at))
	ttl := m.TTL()

	tok, exp, err := m.Issue("user-1", entity.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(ttl+time.Second), exp)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp), "returned expiry matches the signed claim")

	for _, d := range []time.Duration{0, ttl / 2, ttl - 500*time.Millisecond, ttl - time.Nanosecond} {
		_, err := m.WithClock(fixedClock(at.Add(d))).Verify(tok)
		assert.NoError(t, err, "offset %v", d)
	}
	_, err = m.WithClock(fixedClock(exp)).Verify(tok)
	assert.ErrorIs(t, err, apperror.ErrTokenExpired)
}

func TestTokenManager_AnyTamperedByteIsRejected(t *testing.T) {
	m := newTestTokens(t)
	tok, _, err := m.Issue("user-1", entity.RoleMember)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := m.Verify(string(b))
		assert.ErrorIs(t, err, apperror.ErrTokenInvalid, "byte %d", i)
	}
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	m := newTestTokens(t)
	other := NewTokenManager(config.TokenConfig{Secret: []byte("rotated"), TTL: time.Hour}).WithClock(fixedClock(issuedAt))

	tok, _, err := other.Issue("user-1", entity.RoleAdmin)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, apperror.ErrTokenInvalid)
}

func TestTokenManager_RejectsMalformedClaims(t *testing.T) {
	m := newTestTokens(t)
	sign := func(c jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(issuedAt.Add(time.Hour))
	iat := jwt.NewNumericDate(issuedAt)

	cases := map[string]string{
		"garbage":      "not.a.token",
		"empty":        "",
		"no subject":   sign(&Claims{Role: entity.RoleMember, RegisteredClaims: jwt.RegisteredClaims{IssuedAt: iat, ExpiresAt: exp}}, jwt.SigningMethodHS256, []byte("test-secret")),
		"no expiry":    sign(&Claims{Role: entity.RoleMember, RegisteredClaims: jwt.RegisteredClaims{Subject: "u", IssuedAt: iat}}, jwt.SigningMethodHS256, []byte("test-secret")),
		"unknown role": sign(&Claims{Role: "owner", RegisteredClaims: jwt.RegisteredClaims{Subject: "u", IssuedAt: iat, ExpiresAt: exp}}, jwt.SigningMethodHS256, []byte("test-secret")),
		"hs512":        sign(&Claims{Role: entity.RoleMember, RegisteredClaims: jwt.RegisteredClaims{Subject: "u", IssuedAt: iat, ExpiresAt: exp}}, jwt.SigningMethodHS512, []byte("test-secret")),
		"alg none":     sign(&Claims{Role: entity.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "u", IssuedAt: iat, ExpiresAt: exp}}, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(tok)
			assert.ErrorIs(t, err, apperror.ErrTokenInvalid)
		})
	}
}

func TestTokenManager_IssueRequiresSubject(t *testing.T) {
	_, _, err := newTestTokens(t).Issue("", entity.RoleMember)
	assert.Error(t, err)
}

func TestNewTokenManager_CopiesSecret(t *testing.T) {
	secret := []byte("mutable")
	m := NewTokenManager(config.TokenConfig{Secret: secret, TTL: time.Hour}).WithClock(fixedClock(issuedAt))
	tok, _, err := m.Issue("u", entity.RoleMember)
	require.NoError(t, err)

	secret[0] = 'X'
	_, err = m.Verify(tok)
	assert.NoError(t, err)
}
