// Package web renders the server-side pages of the pro dashboard and the client portal.
// Pages run the same guards as the API and render a sign-in or no-access notice
// in place of their content; guards never redirect.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	claimdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
	policydomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageClaimsLimit = 100

// Guard is the subset of the rbac guard the pages call.
type Guard interface {
	RequireAuth(ctx context.Context) (*rbac.AuthContext, error)
	RequirePermission(ctx context.Context, perm policydomain.Permission) (*rbac.AuthContext, error)
	RequirePortalAuth(ctx context.Context, opts rbac.PortalOptions) (*rbac.PortalAuthContext, error)
}

// ClaimStore is the claim lookup the pages need.
type ClaimStore interface {
	ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*claimdomain.Claim, error)
	GetByID(ctx context.Context, id string) (*claimdomain.Claim, error)
}

// SignInPaths are the sign-in pages linked from the unauthenticated notice.
type SignInPaths struct {
	Pro    string
	Client string
}

// Pages serves the HTML pages.
type Pages struct {
	guard  Guard
	claims ClaimStore
	signIn SignInPaths
	logger *zap.Logger
	tmpl   map[string]*template.Template
}

// Notice replaces page content when a guard refuses the request.
type Notice struct {
	Kind      string
	Heading   string
	Message   string
	SignInURL string
}

type pageData struct {
	Title  string
	Notice *Notice
	Auth   *rbac.AuthContext
	Portal *rbac.PortalAuthContext
	Claims []*claimdomain.Claim
	Claim  *claimdomain.Claim
}

var pageFiles = []string{"dashboard", "claims", "claim_new", "portal", "portal_claim"}

// NewPages parses the embedded templates.
func NewPages(guard Guard, claims ClaimStore, signIn SignInPaths, logger *zap.Logger) (*Pages, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		tmpl[name] = t
	}
	return &Pages{guard: guard, claims: claims, signIn: signIn, logger: logger, tmpl: tmpl}, nil
}

// Routes mounts the pages on r.
func (p *Pages) Routes(r chi.Router) {
	r.Get("/dashboard", p.Dashboard)
	r.Get("/claims", p.Claims)
	r.Get("/claims/new", p.NewClaim)
	r.Get("/portal", p.Portal)
	r.Get("/portal/claims/{claimID}", p.PortalClaim)
}

func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	ac, err := p.guard.RequireAuth(r.Context())
	if err != nil {
		p.denied(w, r, "dashboard", p.signIn.Pro, err)
		return
	}
	p.render(w, http.StatusOK, "dashboard", pageData{Title: "Dashboard", Auth: ac})
}

func (p *Pages) Claims(w http.ResponseWriter, r *http.Request) {
	ac, err := p.guard.RequirePermission(r.Context(), policydomain.PermClaimsRead)
	if err != nil {
		p.denied(w, r, "claims", p.signIn.Pro, err)
		return
	}
	claims, err := p.claims.ListByOrg(r.Context(), ac.OrgID, pageClaimsLimit, 0)
	if err != nil {
		p.failed(w, "claims", err)
		return
	}
	p.render(w, http.StatusOK, "claims", pageData{Title: "Claims", Auth: ac, Claims: claims})
}

func (p *Pages) NewClaim(w http.ResponseWriter, r *http.Request) {
	ac, err := p.guard.RequirePermission(r.Context(), policydomain.PermClaimsWrite)
	if err != nil {
		p.denied(w, r, "claim_new", p.signIn.Pro, err)
		return
	}
	p.render(w, http.StatusOK, "claim_new", pageData{Title: "New claim", Auth: ac})
}

func (p *Pages) Portal(w http.ResponseWriter, r *http.Request) {
	pc, err := p.guard.RequirePortalAuth(r.Context(), rbac.PortalOptions{})
	if err != nil {
		p.denied(w, r, "portal", p.signIn.Client, err)
		return
	}
	p.render(w, http.StatusOK, "portal", pageData{Title: "Portal", Portal: pc})
}

func (p *Pages) PortalClaim(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimID")
	pc, err := p.guard.RequirePortalAuth(r.Context(), rbac.PortalOptions{ClaimID: claimID})
	if err != nil {
		p.denied(w, r, "portal_claim", p.signIn.Client, err)
		return
	}
	c, err := p.claims.GetByID(r.Context(), claimID)
	if err != nil {
		p.failed(w, "portal_claim", err)
		return
	}
	if c == nil {
		p.render(w, http.StatusNotFound, "portal_claim", pageData{Title: "Claim", Notice: &Notice{
			Kind: "missing", Heading: "Claim not found", Message: "This claim no longer exists.",
		}})
		return
	}
	p.render(w, http.StatusOK, "portal_claim", pageData{Title: "Claim " + c.ClaimNumber, Portal: pc, Claim: c})
}

// denied renders the notice for a guard refusal. Operational errors get the generic failure page.
func (p *Pages) denied(w http.ResponseWriter, r *http.Request, page, signInPath string, err error) {
	ae, ok := rbac.AsAuthError(err)
	if !ok {
		p.failed(w, page, err)
		return
	}
	n := &Notice{Kind: "forbidden", Heading: "No access", Message: ae.Message}
	if ae.Code == rbac.CodeUnauthenticated {
		n.Kind = "signin"
		n.Heading = "Please sign in"
		if signInPath != "" {
			n.SignInURL = signInPath + "?redirect_url=" + url.QueryEscape(r.URL.RequestURI())
		}
	}
	p.render(w, ae.Status, page, pageData{Title: n.Heading, Notice: n})
}

func (p *Pages) failed(w http.ResponseWriter, page string, err error) {
	p.logger.Error("page failed", zap.String("page", page), zap.Error(err))
	p.render(w, http.StatusInternalServerError, page, pageData{Title: "Error", Notice: &Notice{
		Kind: "error", Heading: "Something went wrong", Message: "Please try again in a moment.",
	}})
}

func (p *Pages) render(w http.ResponseWriter, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		p.logger.Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
