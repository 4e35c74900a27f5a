package middleware

import (
	"net/http"
	"strings"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/identity/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/security"
)

const bearerPrefix = "bearer "

// TokenValidator verifies a session token. *security.TokenProvider implements it.
type TokenValidator interface {
	ValidateSession(token string) (*security.SessionClaims, error)
}

// Session returns middleware that resolves the caller's principal from the Bearer header
// or the session cookie and stores it in the request context.
// It never rejects: a missing or invalid token only means no principal is attached.
// Routing and guards decide what an anonymous request may do.
func Session(tokens TokenValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				next.ServeHTTP(w, r)
				return
			}
			for _, token := range candidateTokens(r, cookieName) {
				claims, err := tokens.ValidateSession(token)
				if err != nil {
					continue
				}
				p := domain.Principal{
					UserID:    claims.Subject,
					SessionID: claims.SessionID,
					Claims: domain.SessionClaims{
						UserType: claims.Metadata.UserType,
						Email:    claims.Email,
					},
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// candidateTokens returns the Bearer token (if any) followed by the session cookie value (if any).
func candidateTokens(r *http.Request, cookieName string) []string {
	var out []string
	if t := extractBearer(r.Header.Get("Authorization")); t != "" {
		out = append(out, t)
	}
	if c, err := r.Cookie(cookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// extractBearer returns the Bearer token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
