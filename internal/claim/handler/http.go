package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
	claimrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
	policydomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/httpx"
)

// Guard is the permission check the claim endpoints run before touching storage.
type Guard interface {
	RequirePermission(ctx context.Context, perm policydomain.Permission) (*rbac.AuthContext, error)
}

// Handler serves /api/claims. Every query is scoped by the org id the guard resolved;
// an orgId supplied by the client is never read.
type Handler struct {
	guard  Guard
	claims claimrepo.Repository
	audit  audit.AuditLogger
	logger *zap.Logger
}

// NewHandler returns a claims handler. auditLogger and logger may be nil.
func NewHandler(guard Guard, claims claimrepo.Repository, auditLogger audit.AuditLogger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{guard: guard, claims: claims, audit: auditLogger, logger: logger}
}

// Routes mounts the claim endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{claimID}", h.Get)
}

type listResponse struct {
	Claims []*domain.Claim `json:"claims"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

// List returns the caller's org claims, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ac, err := h.guard.RequirePermission(r.Context(), policydomain.PermClaimsRead)
	if err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	limit, offset := httpx.Page(r)
	claims, err := h.claims.ListByOrg(r.Context(), ac.OrgID, limit, offset)
	if err != nil {
		httpx.WriteInternal(w, h.logger, err)
		return
	}
	if claims == nil {
		claims = []*domain.Claim{}
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Claims: claims, Limit: limit, Offset: offset})
}

// Get returns one claim. A claim belonging to another org is reported as not found.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ac, err := h.guard.RequirePermission(r.Context(), policydomain.PermClaimsRead)
	if err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	c, err := h.claims.GetByIDForOrg(r.Context(), ac.OrgID, chi.URLParam(r, "claimID"))
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

type createRequest struct {
	ClaimNumber string        `json:"claimNumber"`
	Carrier     string        `json:"carrier"`
	InsuredName string        `json:"insuredName"`
	Status      domain.Status `json:"status"`
	LossDate    *time.Time    `json:"lossDate"`
}

// Create files a new claim in the caller's org.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ac, err := h.guard.RequirePermission(r.Context(), policydomain.PermClaimsWrite)
	if err != nil {
		httpx.WriteGuardError(w, h.logger, err)
		return
	}
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid JSON body")
		return
	}
	c := &domain.Claim{
		ID:          uuid.New().String(),
		OrgID:       ac.OrgID,
		ClaimNumber: strings.TrimSpace(req.ClaimNumber),
		Carrier:     strings.TrimSpace(req.Carrier),
		InsuredName: strings.TrimSpace(req.InsuredName),
		Status:      req.Status,
		CreatedAt:   time.Now().UTC(),
	}
	if req.LossDate != nil {
		c.LossDate = req.LossDate.UTC()
	}
	if err := c.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	if err := h.claims.Create(r.Context(), c); err != nil {
		httpx.WriteInternal(w, h.logger, err)
		return
	}
	if h.audit != nil {
		meta, _ := json.Marshal(map[string]string{"claimId": c.ID, "claimNumber": c.ClaimNumber})
		h.audit.LogEvent(r.Context(), ac.OrgID, ac.UserID, audit.ActionClaimCreated, "claim", string(meta))
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}
