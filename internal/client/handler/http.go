package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	claimdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/httpx"
)

// Guard is the portal check every client endpoint runs.
type Guard interface {
	RequirePortalAuth(ctx context.Context, opts rbac.PortalOptions) (*rbac.PortalAuthContext, error)
}

// ClaimReader loads a claim by id. It is only called after the grant check passed.
type ClaimReader interface {
	GetByID(ctx context.Context, id string) (*claimdomain.Claim, error)
}

// Handler serves the client portal API under /api/portal.
type Handler struct {
	guard  Guard
	claims ClaimReader
	logger *zap.Logger
}

// NewHandler returns a portal handler.
func NewHandler(guard Guard, claims ClaimReader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{guard: guard, claims: claims, logger: logger}
}

// Routes mounts the portal endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Get("/claims/{claimID}", h.Claim)
}

type meResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	ClientID string `json:"clientId,omitempty"`
}

// Me returns the signed-in portal user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	pc, err := h.guard.RequirePortalAuth(r.Context(), rbac.PortalOptions{})
	if err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meResponse{UserID: pc.UserID, Email: pc.Email, ClientID: pc.ClientID})
}

// Claim returns one claim the caller holds a grant for.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimID")
	if _, err := h.guard.RequirePortalAuth(r.Context(), rbac.PortalOptions{ClaimID: claimID}); err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	c, err := h.claims.GetByID(r.Context(), claimID)
	if err != nil {
		httpx.WriteInternal(w, h.logger, err)
		return
	}
	if c == nil {
		httpx.WriteError(w, http.StatusNotFound, "NOT_FOUND", "claim not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}
