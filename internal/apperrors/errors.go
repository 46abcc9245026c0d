// Package apperrors defines the domain error taxonomy shared by the
// repository, service, and handler layers, plus the mapping from each error
// to its HTTP response status. Every error here is recoverable at the
// request boundary; none is fatal to the process.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive is returned when credentials are correct but the
	// account has been deactivated by an administrator.
	ErrAccountInactive = errors.New("account is deactivated")

	// ErrForbidden is an authorization denial: the user is authenticated but
	// does not hold the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateEmail and ErrDuplicateUsername surface store-level
	// uniqueness violations at registration time.
	ErrDuplicateEmail    = errors.New("email is already registered")
	ErrDuplicateUsername = errors.New("username is already taken")

	// ErrDuplicateRoleName surfaces the roles.name unique constraint.
	ErrDuplicateRoleName = errors.New("role name already exists")

	// ErrNotFound is returned when the target user or role does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSelfDeactivation is returned when an admin attempts to deactivate
	// their own account through the admin surface.
	ErrSelfDeactivation = errors.New("cannot deactivate your own account")
)

// Status maps a domain error to its HTTP response status. Unrecognized
// errors map to 500; handlers log those before responding.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountInactive), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicateUsername),
		errors.Is(err, ErrDuplicateRoleName):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSelfDeactivation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
