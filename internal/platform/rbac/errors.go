package rbac

import (
	"errors"
	"net/http"
)

// Code is the stable error code carried in the JSON envelope of a guard denial.
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
)

// AuthError is a terminal authorization decision produced by a guard.
// Any other error returned by a guard is an operational failure.
type AuthError struct {
	Code    Code
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func unauthenticated(msg string) *AuthError {
	return &AuthError{Code: CodeUnauthenticated, Status: http.StatusUnauthorized, Message: msg}
}

func forbidden(msg string) *AuthError {
	return &AuthError{Code: CodeForbidden, Status: http.StatusForbidden, Message: msg}
}

// AsAuthError returns the guard decision wrapped in err, if any.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if err == nil || !errors.As(err, &ae) || ae == nil {
		return nil, false
	}
	return ae, true
}

// IsAuthError reports whether v is a guard denial: an *AuthError, an AuthError value,
// or an error wrapping one. It is false for nil, for success contexts, and for operational errors.
func IsAuthError(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case *AuthError:
		return x != nil
	case AuthError:
		return x.Code != ""
	case error:
		_, ok := AsAuthError(x)
		return ok
	default:
		return false
	}
}

// IsPortalAuthError is IsAuthError restricted to the two portal outcomes:
// 401 (not signed in or not provisioned) and 403 (no grant for the claim).
func IsPortalAuthError(v any) bool {
	var ae *AuthError
	switch x := v.(type) {
	case *AuthError:
		ae = x
	case AuthError:
		ae = &x
	case error:
		ae, _ = AsAuthError(x)
	}
	if ae == nil {
		return false
	}
	return ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden
}
