package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/clubhub/config"
	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
)

// TokenManager issues and verifies HS256 bearer tokens.
// It never touches the credential store.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(cfg config.TokenConfig) *TokenManager {
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &TokenManager{secret: secret, ttl: cfg.TTL, now: time.Now}
}

// WithClock returns a copy of m reading time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs {sub, role, iat, exp} for the given subject.
func (m *TokenManager) Issue(subjectID string, role entity.Role) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, errors.New("empty subject")
	}
	iat := m.now()
	exp := ceilNumericDate(iat.Add(m.ttl))
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// ceilNumericDate rounds t up to the claim precision so the signed expiry
// never falls before issue time plus ttl, and the returned value matches it.
func ceilNumericDate(t time.Time) time.Time {
	c := t.Truncate(jwt.TimePrecision)
	if c.Before(t) {
		c = c.Add(jwt.TimePrecision)
	}
	return c
}

// Verify checks signature and expiry and returns the embedded identity.
// Failures are apperror.ErrTokenExpired or apperror.ErrTokenInvalid.
func (m *TokenManager) Verify(tokenStr string) (entity.Identity, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return entity.Identity{}, apperror.ErrTokenExpired
		}
		return entity.Identity{}, apperror.ErrTokenInvalid
	}
	if !tkn.Valid || claims.Subject == "" || claims.IssuedAt == nil || !claims.Role.Valid() {
		return entity.Identity{}, apperror.ErrTokenInvalid
	}
	return entity.Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}
