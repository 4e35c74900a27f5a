package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/middleware"
)

// PortalOptions scopes a portal guard call. ClaimID, when set, requires a grant for that claim.
type PortalOptions struct {
	ClaimID string
}

// RequirePortalAuth resolves the caller as a portal client. Org membership and client status
// never imply claim access: a requested claim always needs its own grant row.
func (g *Guard) RequirePortalAuth(ctx context.Context, opts PortalOptions) (*PortalAuthContext, error) {
	ctx, span := g.start(ctx, "rbac.RequirePortalAuth")
	pc, err := g.resolvePortal(ctx, opts)
	g.finish(ctx, span, guardRequirePortalAuth, "", userOf(ctx), err)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

func (g *Guard) resolvePortal(ctx context.Context, opts PortalOptions) (*PortalAuthContext, error) {
	p, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, unauthenticated("Authentication required")
	}

	u, err := g.deps.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("rbac: get user: %w", err)
	}
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return nil, unauthenticated("Client account not found")
	}

	if claimID := strings.TrimSpace(opts.ClaimID); claimID != "" {
		granted, err := g.deps.Grants.HasClaimAccess(ctx, u.Email, claimID)
		if err != nil {
			return nil, fmt.Errorf("rbac: check claim access: %w", err)
		}
		if !granted {
			return nil, forbidden("No access to this claim")
		}
	}

	pc := &PortalAuthContext{UserID: p.UserID, Email: u.Email}
	if g.deps.Clients != nil {
		c, err := g.deps.Clients.GetClientByEmail(ctx, u.Email)
		if err != nil {
			return nil, fmt.Errorf("rbac: get client: %w", err)
		}
		if c != nil {
			pc.ClientID = c.ID
		}
	}
	return pc, nil
}
