package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/identity/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/middleware"
)

type mockMetrics struct {
	counts map[string]int
}

func (m *mockMetrics) RouteDecision(decision, class string) {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[decision+":"+class]++
}

type mockRecorder struct {
	events []DecisionEvent
}

func (m *mockRecorder) RecordDecision(ctx context.Context, ev DecisionEvent) {
	m.events = append(m.events, ev)
}

type harness struct {
	handler  http.Handler
	reached  *bool
	metrics  *mockMetrics
	recorder *mockRecorder
}

func newHarness(t *testing.T) harness {
	t.Helper()
	reached := new(bool)
	metrics := &mockMetrics{}
	recorder := &mockRecorder{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(defaultTable(t), Options{Metrics: metrics, Recorder: recorder})(next)
	return harness{handler: h, reached: reached, metrics: metrics, recorder: recorder}
}

type session struct {
	userID   string
	userType string
	cookie   string
}

func (h harness) do(path string, s *session) *httptest.ResponseRecorder {
	*h.reached = false
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if s != nil {
		if s.userID != "" {
			req = req.WithContext(middleware.WithPrincipal(req.Context(), domain.Principal{
				UserID: s.userID,
				Claims: domain.SessionClaims{UserType: s.userType},
			}))
		}
		if s.cookie != "" {
			req.AddCookie(&http.Cookie{Name: "x-user-type", Value: s.cookie})
		}
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func locationPath(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	return loc.Path
}

func TestMiddleware_PublicNeverChallenged(t *testing.T) {
	h := newHarness(t)
	sessions := []*session{
		nil,
		{userID: "u1", userType: "client"},
		{userID: "u1", userType: "pro"},
		{cookie: "client"},
	}
	for _, path := range []string{"/client/sign-up", "/sign-in", "/api/health", "/client/sign-up/sso-callback", "/"} {
		for _, s := range sessions {
			rec := h.do(path, s)
			if rec.Code != http.StatusOK || !*h.reached {
				t.Errorf("%s: status = %d reached = %v, want pass-through", path, rec.Code, *h.reached)
			}
			if rec.Header().Get(HeaderRouteType) != "" {
				t.Errorf("%s: public route got %s header", path, HeaderRouteType)
			}
		}
	}
	if len(h.recorder.events) != 0 {
		t.Errorf("public decisions recorded: %+v", h.recorder.events)
	}
}

func TestMiddleware_UnauthenticatedAPI(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/api/claims", "/api/portal/me", "/api/unlisted"} {
		rec := h.do(path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", path, rec.Code)
		}
		if *h.reached {
			t.Errorf("%s: handler reached", path)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["error"] != "unauthorized" || len(body) != 1 {
			t.Errorf("%s: body = %v", path, body)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
	}
	if h.metrics.counts["unauthenticated:api"] != 3 {
		t.Errorf("metrics = %v", h.metrics.counts)
	}
}

func TestMiddleware_UnauthenticatedPageChallenge(t *testing.T) {
	h := newHarness(t)
	testCases := []struct {
		path     string
		wantPath string
	}{
		{"/dashboard", "/sign-in"},
		{"/claims/new?draft=1", "/sign-in"},
		{"/unlisted", "/sign-in"},
		{"/portal/claims/c1", "/client/sign-in"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rec := h.do(tc.path, &session{cookie: "pro"})
			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want 302", rec.Code)
			}
			if got := locationPath(t, rec); got != tc.wantPath {
				t.Errorf("Location path = %q, want %q", got, tc.wantPath)
			}
			loc, _ := url.Parse(rec.Header().Get("Location"))
			if got := loc.Query().Get("redirect_url"); got != tc.path {
				t.Errorf("redirect_url = %q, want %q", got, tc.path)
			}
			if *h.reached {
				t.Error("handler reached")
			}
		})
	}
}

func TestMiddleware_CrossSurfaceRedirect(t *testing.T) {
	h := newHarness(t)
	testCases := []struct {
		name     string
		path     string
		s        session
		wantPath string
	}{
		{"client claims on dashboard", "/dashboard", session{userID: "u1", userType: "client"}, "/portal"},
		{"client claims on claims", "/claims", session{userID: "u1", userType: "client"}, "/portal"},
		{"client claims on claims/new", "/claims/new", session{userID: "u1", userType: "client"}, "/portal"},
		{"pro claims on portal", "/portal", session{userID: "u1", userType: "pro"}, "/dashboard"},
		{"pro claims on portal claim", "/portal/claims/c1", session{userID: "u1", userType: "pro"}, "/dashboard"},
		{"client cookie on pro route", "/dashboard", session{userID: "u1", cookie: "client"}, "/portal"},
		{"pro cookie on client route", "/portal", session{userID: "u1", cookie: "pro"}, "/dashboard"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.s
			rec := h.do(tc.path, &s)
			if rec.Code != http.StatusTemporaryRedirect {
				t.Fatalf("status = %d, want 307", rec.Code)
			}
			if got := locationPath(t, rec); got != tc.wantPath {
				t.Errorf("Location path = %q, want %q", got, tc.wantPath)
			}
			if *h.reached {
				t.Error("handler reached")
			}
		})
	}
}

func TestMiddleware_CorrectSurfaceAllowed(t *testing.T) {
	h := newHarness(t)
	testCases := []struct {
		name       string
		path       string
		s          session
		wantHeader string
	}{
		{"pro on dashboard", "/dashboard", session{userID: "u1", userType: "pro"}, "pro"},
		{"pro on claims/new", "/claims/new", session{userID: "u1", userType: "pro"}, "pro"},
		{"client on portal", "/portal", session{userID: "u1", userType: "client"}, "client"},
		{"client on portal claim", "/portal/claims/c1", session{userID: "u1", userType: "client"}, "client"},
		{"claims beat cookie", "/dashboard", session{userID: "u1", userType: "pro", cookie: "client"}, "pro"},
		{"unknown type on pro route", "/dashboard", session{userID: "u1"}, "pro"},
		{"unknown type on portal", "/portal", session{userID: "u1", userType: "homeowner"}, "client"},
		{"api with session", "/api/claims", session{userID: "u1", userType: "client"}, ""},
		{"unlisted page", "/settings-legacy", session{userID: "u1", userType: "client"}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.s
			rec := h.do(tc.path, &s)
			if rec.Code != http.StatusOK || !*h.reached {
				t.Fatalf("status = %d reached = %v, want allowed", rec.Code, *h.reached)
			}
			if got := rec.Header().Get(HeaderRouteType); got != tc.wantHeader {
				t.Errorf("%s = %q, want %q", HeaderRouteType, got, tc.wantHeader)
			}
		})
	}
}

func TestMiddleware_RecordsDenials(t *testing.T) {
	h := newHarness(t)
	h.do("/dashboard", &session{userID: "u1", userType: "client"})
	h.do("/api/claims", nil)

	if len(h.recorder.events) != 2 {
		t.Fatalf("events = %+v", h.recorder.events)
	}
	if ev := h.recorder.events[0]; ev.Decision != DecisionCrossSurface || ev.UserID != "u1" || ev.Path != "/dashboard" {
		t.Errorf("cross-surface event = %+v", ev)
	}
	if ev := h.recorder.events[1]; ev.Decision != DecisionUnauthenticated || ev.Class != APIProtected {
		t.Errorf("unauthenticated event = %+v", ev)
	}
	if h.metrics.counts["cross_surface:pro"] != 1 {
		t.Errorf("metrics = %v", h.metrics.counts)
	}
}
