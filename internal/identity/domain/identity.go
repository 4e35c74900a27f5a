package domain

import "strings"

// Principal is the authenticated identity for the duration of one request.
// It is resolved from a verified session token and never persisted.
type Principal struct {
	UserID    string
	SessionID string
	Claims    SessionClaims
}

// SessionClaims is the subset of verified token claims the access layer reads.
type SessionClaims struct {
	// UserType is the declared surface as carried by the token; empty when claims lag onboarding.
	UserType string
	Email    string
}

// Surface is the application area a user type belongs to.
type Surface int

const (
	SurfaceUnknown Surface = iota
	SurfacePro
	SurfaceClient
)

// ParseSurface decodes a declared user type. Anything other than "pro" or "client"
// (after trimming, case-insensitive) is SurfaceUnknown.
func ParseSurface(s string) Surface {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pro":
		return SurfacePro
	case "client":
		return SurfaceClient
	default:
		return SurfaceUnknown
	}
}

// String returns the wire value ("pro", "client") or "" for unknown.
func (s Surface) String() string {
	switch s {
	case SurfacePro:
		return "pro"
	case SurfaceClient:
		return "client"
	default:
		return ""
	}
}
