package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/httpx"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker is satisfied by the OPA evaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves GET /api/health for load balancers and CI. Either dependency may be nil,
// in which case its check is skipped.
type Handler struct {
	db     Pinger
	policy PolicyChecker
	logger *zap.Logger
}

// NewHandler returns a health handler.
func NewHandler(db Pinger, policy PolicyChecker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{db: db, policy: policy, logger: logger}
}

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServeHTTP reports 200 when every configured check passes, 503 otherwise.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := response{Status: "ok", Checks: map[string]string{}}
	check := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "fail"
			resp.Status = "degraded"
			return
		}
		resp.Checks[name] = "ok"
	}
	if h.db != nil {
		check("database", h.db.PingContext)
	}
	if h.policy != nil {
		check("policy", h.policy.HealthCheck)
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, resp)
}
