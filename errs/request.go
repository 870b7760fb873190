package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken     = errors.New("missing access token")
	ErrInvalidToken     = errors.New("invalid access token")
	ErrExpiredToken     = errors.New("expired access token")
	ErrInsufficientRole = errors.New("insufficient role")
)

// Authentication & Authorization Error Constructors
func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Details:    "No token provided",
		Field:      "authorization",
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidToken),
		Details:    "Invalid token",
		Field:      "authorization",
		Cause:      cause,
	}
}

func NewExpiredTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrExpiredToken),
		Details:    "Access token has expired",
		Field:      "authorization",
	}
}

func NewInsufficientRoleError(requiredRoles []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrInsufficientRole),
		Details:    fmt.Sprintf("Insufficient role. Required one of: %s", strings.Join(requiredRoles, ", ")),
		Field:      "authorization",
	}
}

// Authentication & Authorization Error Type Checkers
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
