package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	membershiprepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/httpx"
)

// Guard is the subset of the rbac guard the member endpoints use.
type Guard interface {
	RequireRole(ctx context.Context, min domain.Role) (*rbac.AuthContext, error)
	RequireAdmin(ctx context.Context) (*rbac.AuthContext, error)
}

// Handler serves /api/org/members for the caller's resolved org.
type Handler struct {
	guard   Guard
	members membershiprepo.Repository
	audit   audit.AuditLogger
	logger  *zap.Logger
}

// NewHandler returns a members handler. auditLogger and logger may be nil.
func NewHandler(guard Guard, members membershiprepo.Repository, auditLogger audit.AuditLogger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{guard: guard, members: members, audit: auditLogger, logger: logger}
}

// Routes mounts the member endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/{userID}/role", h.UpdateRole)
}

type memberResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	OrgID     string    `json:"orgId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(m *domain.Membership) memberResponse {
	return memberResponse{ID: m.ID, UserID: m.UserID, OrgID: m.OrgID, Role: m.Role.String(), CreatedAt: m.CreatedAt}
}

// List returns the members of the caller's org. Requires MANAGER or above.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ac, err := h.guard.RequireRole(r.Context(), domain.RoleManager)
	if err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	ms, err := h.members.ListMembershipsByOrg(r.Context(), ac.OrgID)
	if err != nil {
		httpx.WriteInternal(w, h.logger, err)
		return
	}
	out := make([]memberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"members": out})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a member's role inside the caller's org. Requires ADMIN.
// An admin cannot change their own role, so an org never loses its last admin this way.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ac, err := h.guard.RequireAdmin(r.Context())
	if err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	var req updateRoleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid JSON body")
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "unknown role")
		return
	}
	target := chi.URLParam(r, "userID")
	if target == ac.UserID {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "cannot change your own role")
		return
	}
	m, err := h.members.UpdateRole(r.Context(), target, ac.OrgID, role)
	if err != nil {
		httpx.WriteInternal(w, h.logger, err)
		return
	}
	if m == nil {
		httpx.WriteError(w, http.StatusNotFound, "NOT_FOUND", "member not found")
		return
	}
	if h.audit != nil {
		meta, _ := json.Marshal(map[string]string{"targetUserId": target, "role": role.String()})
		h.audit.LogEvent(r.Context(), ac.OrgID, ac.UserID, audit.ActionRoleChanged, "membership", string(meta))
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(m))
}
