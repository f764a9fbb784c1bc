// Package apperror is the error taxonomy shared by the service and transport layers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("conflict")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAuthorizationFailed  = errors.New("insufficient role")
	ErrNotFound             = errors.New("not found")
)

var (
	ErrInvalidCredentials      = fmt.Errorf("%w: invalid email or password", ErrAuthenticationFailed)
	ErrAccountDeactivated      = fmt.Errorf("%w: account is deactivated, please contact an admin", ErrAuthenticationFailed)
	ErrCurrentPasswordMismatch = fmt.Errorf("%w: current password is incorrect", ErrAuthenticationFailed)
	ErrTokenMissing            = fmt.Errorf("%w: missing bearer token", ErrAuthenticationFailed)
	ErrTokenInvalid            = fmt.Errorf("%w: invalid token", ErrAuthenticationFailed)
	ErrTokenExpired            = fmt.Errorf("%w: token expired", ErrAuthenticationFailed)
	ErrUserExists              = fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	ErrUserNotFound            = fmt.Errorf("%w: user not found", ErrNotFound)
)

// Validation wraps a field-level message as ErrValidation.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// HTTPStatus maps an error from the taxonomy to its response status.
// Anything outside the taxonomy is a server error.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorizationFailed):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Known reports whether err belongs to the taxonomy.
func Known(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
