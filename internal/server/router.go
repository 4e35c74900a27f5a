// Package server assembles the HTTP router and runs the server.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	audithandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/handler"
	claimhandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/handler"
	clienthandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/handler"
	membershiphandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/handler"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/obs"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/routing"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/httpx"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/middleware"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/web"
)

// Deps holds everything the router mounts. Handlers left nil are not mounted.
type Deps struct {
	Logger  *zap.Logger
	Metrics *obs.Metrics

	Tokens        middleware.TokenValidator
	SessionCookie string
	Routes        *routing.Table
	Routing       routing.Options

	RateLimitRPS   int
	RateLimitBurst int

	Health  http.Handler
	Claims  *claimhandler.Handler
	Members *membershiphandler.Handler
	Audit   *audithandler.Handler
	Portal  *clienthandler.Handler
	Pages   *web.Pages
}

// NewRouter returns the application handler. Middleware order:
// request id, real ip, client ip, recoverer, request log, metrics, tracing,
// session, route gate, then per-IP rate limiting on /api.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.ClientIP)
	r.Use(chimw.Recoverer)
	r.Use(obs.RequestLogger(logger))
	r.Use(d.Metrics.Instrument)
	r.Use(otelhttp.NewMiddleware("skyscraper.http"))
	r.Use(middleware.Session(d.Tokens, d.SessionCookie))
	if d.Routes != nil {
		r.Use(routing.Middleware(d.Routes, d.Routing))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("skyscraper\n"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if d.RateLimitRPS > 0 && d.RateLimitBurst > 0 {
			api.Use(newIPRateLimiter(d.RateLimitRPS, d.RateLimitBurst).Middleware)
		}
		api.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
		})
		if d.Health != nil {
			api.Method(http.MethodGet, "/health", d.Health)
		}
		if d.Claims != nil {
			api.Route("/claims", d.Claims.Routes)
		}
		if d.Members != nil {
			api.Route("/org/members", d.Members.Routes)
		}
		if d.Audit != nil {
			api.Get("/audit", d.Audit.List)
		}
		if d.Portal != nil {
			api.Route("/portal", d.Portal.Routes)
		}
	})

	if d.Pages != nil {
		d.Pages.Routes(r)
	}
	return r
}
