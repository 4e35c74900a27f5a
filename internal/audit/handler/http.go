package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/domain"
	auditrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/httpx"
)

// Guard is the admin check the audit endpoint runs.
type Guard interface {
	RequireAdmin(ctx context.Context) (*rbac.AuthContext, error)
}

// Handler serves GET /api/audit for org admins.
type Handler struct {
	guard  Guard
	repo   auditrepo.Repository
	logger *zap.Logger
}

// NewHandler returns an audit log handler.
func NewHandler(guard Guard, repo auditrepo.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{guard: guard, repo: repo, logger: logger}
}

type listResponse struct {
	Logs   []*domain.AuditLog `json:"logs"`
	Limit  int32              `json:"limit"`
	Offset int32              `json:"offset"`
}

// List returns the caller's org audit log, newest first, paginated by limit and offset.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ac, err := h.guard.RequireAdmin(r.Context())
	if err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	limit, offset := httpx.Page(r)
	logs, err := h.repo.ListByOrg(r.Context(), ac.OrgID, limit, offset)
	if err != nil {
		httpx.WriteInternal(w, h.logger, err)
		return
	}
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Logs: logs, Limit: limit, Offset: offset})
}
