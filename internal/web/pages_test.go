package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	claimdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
	policydomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
)

type stubGuard struct {
	ac     *rbac.AuthContext
	pc     *rbac.PortalAuthContext
	err    error
	grants map[string]bool
}

func (g *stubGuard) RequireAuth(ctx context.Context) (*rbac.AuthContext, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.ac, nil
}

func (g *stubGuard) RequirePermission(ctx context.Context, perm policydomain.Permission) (*rbac.AuthContext, error) {
	return g.RequireAuth(ctx)
}

func (g *stubGuard) RequirePortalAuth(ctx context.Context, opts rbac.PortalOptions) (*rbac.PortalAuthContext, error) {
	if g.err != nil {
		return nil, g.err
	}
	if opts.ClaimID != "" && !g.grants[opts.ClaimID] {
		return nil, &rbac.AuthError{Code: rbac.CodeForbidden, Status: 403, Message: "No access to this claim"}
	}
	return g.pc, nil
}

type stubClaims struct {
	claims []*claimdomain.Claim
	err    error
}

func (s *stubClaims) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*claimdomain.Claim, error) {
	var out []*claimdomain.Claim
	for _, c := range s.claims {
		if c.OrgID == orgID {
			out = append(out, c)
		}
	}
	return out, s.err
}

func (s *stubClaims) GetByID(ctx context.Context, id string) (*claimdomain.Claim, error) {
	for _, c := range s.claims {
		if c.ID == id {
			return c, s.err
		}
	}
	return nil, s.err
}

func newTestPages(t *testing.T, g Guard, claims ClaimStore) http.Handler {
	t.Helper()
	p, err := NewPages(g, claims, SignInPaths{Pro: "/sign-in", Client: "/client/sign-in"}, nil)
	if err != nil {
		t.Fatalf("NewPages: %v", err)
	}
	r := chi.NewRouter()
	p.Routes(r)
	return r
}

func fetch(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

var sampleClaims = []*claimdomain.Claim{
	{ID: "c1", OrgID: "org_a", ClaimNumber: "A-100", InsuredName: "Pat Doe", Status: claimdomain.StatusOpen},
	{ID: "c2", OrgID: "org_b", ClaimNumber: "B-200", Status: claimdomain.StatusOpen},
}

func TestProPages_Allowed(t *testing.T) {
	g := &stubGuard{ac: &rbac.AuthContext{OrgID: "org_a", UserID: "u1", Role: "MANAGER"}}
	h := newTestPages(t, g, &stubClaims{claims: sampleClaims})

	rec := fetch(h, "/dashboard")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "MANAGER") {
		t.Errorf("dashboard: %d %s", rec.Code, rec.Body.String())
	}

	rec = fetch(h, "/claims")
	if rec.Code != http.StatusOK {
		t.Fatalf("claims: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "A-100") || strings.Contains(rec.Body.String(), "B-200") {
		t.Errorf("claims page must list only the resolved org: %s", rec.Body.String())
	}

	if rec := fetch(h, "/claims/new"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<form") {
		t.Errorf("new claim: %d", rec.Code)
	}
}

func TestPages_Notices(t *testing.T) {
	unauth := &rbac.AuthError{Code: rbac.CodeUnauthenticated, Status: 401, Message: "Authentication required"}
	forbidden := &rbac.AuthError{Code: rbac.CodeForbidden, Status: 403, Message: "permission claims:write required (current role: VIEWER)"}

	testCases := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantText   string
	}{
		{"dashboard signed out", "/dashboard", unauth, 401, `href="/sign-in?redirect_url=%2Fdashboard"`},
		{"portal signed out", "/portal", unauth, 401, `href="/client/sign-in?redirect_url=%2Fportal"`},
		{"viewer creating claim", "/claims/new", forbidden, 403, "No access"},
		{"operational failure", "/claims", errors.New("db down"), 500, "Something went wrong"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := fetch(newTestPages(t, &stubGuard{err: tc.err}, &stubClaims{}), tc.target)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tc.wantText) {
				t.Errorf("body missing %q:\n%s", tc.wantText, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "db down") {
				t.Error("operational error leaked into the page")
			}
		})
	}
}

func TestPortalClaimPage(t *testing.T) {
	g := &stubGuard{
		pc:     &rbac.PortalAuthContext{UserID: "user_home", Email: "home@example.com"},
		grants: map[string]bool{"c1": true, "missing": true},
	}
	h := newTestPages(t, g, &stubClaims{claims: sampleClaims})

	if rec := fetch(h, "/portal/claims/c1"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "A-100") {
		t.Errorf("granted claim: %d %s", rec.Code, rec.Body.String())
	}
	rec := fetch(h, "/portal/claims/c2")
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "No access to this claim") {
		t.Errorf("ungranted claim: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "B-200") {
		t.Error("ungranted claim content rendered")
	}
	if rec := fetch(h, "/portal/claims/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing claim: status %d, want 404", rec.Code)
	}
}
