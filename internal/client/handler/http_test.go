package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	claimdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
)

// grantGuard grants access when "email:claim" is present in grants.
type grantGuard struct {
	email  string
	grants map[string]bool
	seen   []rbac.PortalOptions
}

func (g *grantGuard) RequirePortalAuth(ctx context.Context, opts rbac.PortalOptions) (*rbac.PortalAuthContext, error) {
	g.seen = append(g.seen, opts)
	if g.email == "" {
		return nil, &rbac.AuthError{Code: rbac.CodeUnauthenticated, Status: 401, Message: "Authentication required"}
	}
	if opts.ClaimID != "" && !g.grants[g.email+":"+opts.ClaimID] {
		return nil, &rbac.AuthError{Code: rbac.CodeForbidden, Status: 403, Message: "No access to this claim"}
	}
	return &rbac.PortalAuthContext{UserID: "user_home", Email: g.email, ClientID: "client_1"}, nil
}

type claimStore struct {
	claims map[string]*claimdomain.Claim
	reads  int
}

func (s *claimStore) GetByID(ctx context.Context, id string) (*claimdomain.Claim, error) {
	s.reads++
	return s.claims[id], nil
}

func portalRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/portal", h.Routes)
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestMe(t *testing.T) {
	h := portalRouter(NewHandler(&grantGuard{email: "home@example.com"}, &claimStore{}, nil))
	rec := get(h, "/api/portal/me")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"email":"home@example.com"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	anon := portalRouter(NewHandler(&grantGuard{}, &claimStore{}, nil))
	if rec := get(anon, "/api/portal/me"); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
}

func TestClaim(t *testing.T) {
	store := &claimStore{claims: map[string]*claimdomain.Claim{
		"c1": {ID: "c1", OrgID: "org_a", ClaimNumber: "A-1"},
		"c2": {ID: "c2", OrgID: "org_a", ClaimNumber: "A-2"},
	}}
	guard := &grantGuard{email: "home@example.com", grants: map[string]bool{"home@example.com:c1": true, "home@example.com:gone": true}}
	h := portalRouter(NewHandler(guard, store, nil))

	if rec := get(h, "/api/portal/claims/c1"); rec.Code != http.StatusOK {
		t.Errorf("granted claim: status = %d", rec.Code)
	}
	if guard.seen[0].ClaimID != "c1" {
		t.Errorf("guard saw claim %q, want c1", guard.seen[0].ClaimID)
	}

	reads := store.reads
	rec := get(h, "/api/portal/claims/c2")
	if rec.Code != http.StatusForbidden {
		t.Errorf("ungranted claim: status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No access to this claim") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if store.reads != reads {
		t.Error("claim must not be read before the grant check passes")
	}

	if rec := get(h, "/api/portal/claims/gone"); rec.Code != http.StatusNotFound {
		t.Errorf("granted but missing claim: status = %d, want 404", rec.Code)
	}
}
