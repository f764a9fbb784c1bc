package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	"github.com/oksasatya/clubhub/pkg/helpers"
	"github.com/oksasatya/clubhub/pkg/response"
)

// Context keys set by Authenticate.
const (
	CtxUserIDKey   = "userID"
	CtxRoleKey     = "role"
	ctxIdentityKey = "identity"
)

// TokenVerifier is satisfied by helpers.TokenManager.
type TokenVerifier interface {
	Verify(token string) (entity.Identity, error)
}

// extractBearer reads "Bearer <token>" from an Authorization header value.
func extractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperror.ErrTokenMissing
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", apperror.ErrTokenInvalid
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperror.ErrTokenMissing
	}
	return token, nil
}

// Authorize checks an already verified identity against the required role.
func Authorize(id entity.Identity, required entity.Role) error {
	if !id.Role.Satisfies(required) {
		return apperror.ErrAuthorizationFailed
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrTokenMissing):
		return "missing"
	case errors.Is(err, apperror.ErrTokenExpired):
		return "expired"
	case errors.Is(err, apperror.ErrAuthorizationFailed):
		return "forbidden"
	default:
		return "invalid"
	}
}

func reject(c *gin.Context, m *helpers.Metrics, err error) {
	m.GateRejection(rejectionReason(err))
	response.Error[any](c, apperror.HTTPStatus(err), err.Error(), nil)
}

// Authenticate verifies the bearer token and attaches the identity to the
// request. The credential store is not consulted.
func Authenticate(tokens TokenVerifier, m *helpers.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearer(c.GetHeader("Authorization"))
		if err != nil {
			reject(c, m, err)
			return
		}
		id, err := tokens.Verify(token)
		if err != nil {
			reject(c, m, err)
			return
		}
		c.Set(ctxIdentityKey, id)
		c.Set(CtxUserIDKey, id.SubjectID)
		c.Set(CtxRoleKey, string(id.Role))
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(required entity.Role, m *helpers.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			reject(c, m, apperror.ErrTokenMissing)
			return
		}
		if err := Authorize(id, required); err != nil {
			reject(c, m, err)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return entity.Identity{}, false
	}
	id, ok := v.(entity.Identity)
	return id, ok && id.SubjectID != ""
}

