package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/identity/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/middleware"
)

// HeaderRouteType is set on allowed requests to a surface route.
const HeaderRouteType = "x-route-type"

// Decision is the terminal state of one routing pass.
type Decision string

const (
	DecisionPublic          Decision = "public"
	DecisionUnauthenticated Decision = "unauthenticated"
	DecisionCrossSurface    Decision = "cross_surface"
	DecisionAllowed         Decision = "allowed"
)

// DecisionEvent describes one routing decision.
type DecisionEvent struct {
	Decision Decision
	Class    RouteClass
	Path     string
	UserID   string
	Reason   string
}

// Metrics counts routing decisions.
type Metrics interface {
	RouteDecision(decision, class string)
}

// DecisionRecorder receives every non-public decision. Implementations must not block.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, ev DecisionEvent)
}

// Options configures the routing middleware.
type Options struct {
	// UserTypeCookie names the fallback cookie carrying the declared user type.
	UserTypeCookie string
	Metrics        Metrics
	Recorder       DecisionRecorder
	Logger         *zap.Logger
}

// Middleware gates every request on path class, session presence and declared surface.
// It runs after the session middleware and reads the principal from the request context.
// Surface redirects are navigation only; handlers still run their own guards.
func Middleware(t *Table, opts Options) func(http.Handler) http.Handler {
	if opts.UserTypeCookie == "" {
		opts.UserTypeCookie = "x-user-type"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := t.Classify(r.URL.Path)
			if class == Public {
				record(r.Context(), opts, DecisionEvent{Decision: DecisionPublic, Class: class, Path: r.URL.Path})
				next.ServeHTTP(w, r)
				return
			}

			p, ok := middleware.PrincipalFromContext(r.Context())
			if !ok {
				record(r.Context(), opts, DecisionEvent{
					Decision: DecisionUnauthenticated, Class: class, Path: r.URL.Path, Reason: "no session",
				})
				if class == APIProtected || t.IsAPI(r.URL.Path) {
					writeUnauthorized(w)
					return
				}
				http.Redirect(w, r, t.signInURL(class, r.URL), http.StatusFound)
				return
			}

			surface := ResolveSurface(p.Claims.UserType, cookieValue(r, opts.UserTypeCookie))
			if target := t.crossSurfaceTarget(class, surface); target != "" {
				record(r.Context(), opts, DecisionEvent{
					Decision: DecisionCrossSurface, Class: class, Path: r.URL.Path, UserID: p.UserID,
					Reason: surface.String() + " user on " + class.String() + " route",
				})
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			record(r.Context(), opts, DecisionEvent{Decision: DecisionAllowed, Class: class, Path: r.URL.Path, UserID: p.UserID})
			switch class {
			case ProProtected:
				w.Header().Set(HeaderRouteType, domain.SurfacePro.String())
			case ClientProtected:
				w.Header().Set(HeaderRouteType, domain.SurfaceClient.String())
			}
			next.ServeHTTP(w, r)
		})
	}
}

// crossSurfaceTarget returns the home to redirect to, or "" when the request may proceed.
// An unknown surface never redirects.
func (t *Table) crossSurfaceTarget(class RouteClass, s domain.Surface) string {
	switch {
	case s == domain.SurfaceClient && class == ProProtected:
		return t.ClientHome
	case s == domain.SurfacePro && class == ClientProtected:
		return t.ProHome
	default:
		return ""
	}
}

// signInURL builds the challenge redirect, sending portal routes to the client sign-in page.
func (t *Table) signInURL(class RouteClass, from *url.URL) string {
	target := t.SignIn
	if class == ClientProtected {
		target = t.ClientSignIn
	}
	return target + "?" + url.Values{"redirect_url": {from.RequestURI()}}.Encode()
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

func record(ctx context.Context, opts Options, ev DecisionEvent) {
	if opts.Metrics != nil {
		opts.Metrics.RouteDecision(string(ev.Decision), ev.Class.String())
	}
	if ev.Decision == DecisionPublic {
		return
	}
	if ev.Decision != DecisionAllowed {
		opts.Logger.Debug("route denied",
			zap.String("decision", string(ev.Decision)),
			zap.String("class", ev.Class.String()),
			zap.String("path", ev.Path),
			zap.String("user_id", ev.UserID),
		)
	}
	if opts.Recorder != nil {
		opts.Recorder.RecordDecision(ctx, ev)
	}
}
