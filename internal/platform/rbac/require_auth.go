package rbac

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/identity/domain"
	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	orgdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/domain"
	policydomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/middleware"
	userdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
)

// RequireAuth resolves the caller's active organization membership.
// Returns (*AuthContext, nil) on success, (nil, *AuthError) for a denial, and
// (nil, err) for a failed lookup.
func (g *Guard) RequireAuth(ctx context.Context) (*AuthContext, error) {
	ctx, span := g.start(ctx, "rbac.RequireAuth")
	ac, err := g.resolveMembership(ctx)
	g.finish(ctx, span, guardRequireAuth, orgOf(ac), userOf(ctx), err)
	if err != nil {
		return nil, err
	}
	return ac, nil
}

// RequireAdmin is RequireAuth plus role ADMIN. A non-admin gets FORBIDDEN naming both roles.
func (g *Guard) RequireAdmin(ctx context.Context) (*AuthContext, error) {
	ctx, span := g.start(ctx, "rbac.RequireAdmin")
	ac, err := g.resolveMembership(ctx)
	if err == nil && ac.Role != membershipdomain.RoleAdmin {
		err = forbidden(fmt.Sprintf("%s role required (current role: %s)", membershipdomain.RoleAdmin, ac.Role))
	}
	g.finish(ctx, span, guardRequireAdmin, orgOf(ac), userOf(ctx), err)
	if err != nil {
		return nil, err
	}
	return ac, nil
}

// RequireRole is RequireAuth plus a minimum role by rank (ADMIN > MANAGER > MEMBER > VIEWER).
func (g *Guard) RequireRole(ctx context.Context, min membershipdomain.Role) (*AuthContext, error) {
	ctx, span := g.start(ctx, "rbac.RequireRole")
	ac, err := g.resolveMembership(ctx)
	if err == nil && !ac.Role.AtLeast(min) {
		err = forbidden(fmt.Sprintf("%s role or higher required (current role: %s)", min, ac.Role))
	}
	g.finish(ctx, span, guardRequireRole, orgOf(ac), userOf(ctx), err)
	if err != nil {
		return nil, err
	}
	return ac, nil
}

// RequirePermission is RequireAuth plus a permission decision for the caller's role.
func (g *Guard) RequirePermission(ctx context.Context, perm policydomain.Permission) (*AuthContext, error) {
	ctx, span := g.start(ctx, "rbac.RequirePermission")
	span.SetAttributes(attribute.String("auth.permission", string(perm)))
	ac, err := g.resolveMembership(ctx)
	if err == nil {
		err = g.checkPermission(ctx, ac, perm)
	}
	g.finish(ctx, span, guardRequirePermission, orgOf(ac), userOf(ctx), err)
	if err != nil {
		return nil, err
	}
	return ac, nil
}

func (g *Guard) checkPermission(ctx context.Context, ac *AuthContext, perm policydomain.Permission) error {
	if g.deps.Permissions == nil {
		return fmt.Errorf("rbac: no permission evaluator configured")
	}
	ok, err := g.deps.Permissions.Allowed(ctx, ac.Role, perm)
	if err != nil {
		return fmt.Errorf("rbac: evaluate permission: %w", err)
	}
	if !ok {
		return forbidden(fmt.Sprintf("permission %s required (current role: %s)", perm, ac.Role))
	}
	return nil
}

// resolveMembership runs identity, membership, org lookups in that order.
func (g *Guard) resolveMembership(ctx context.Context) (*AuthContext, error) {
	p, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, unauthenticated("Authentication required")
	}

	memberships, err := g.deps.Memberships.ListMembershipsByUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("rbac: list memberships: %w", err)
	}
	if len(memberships) == 0 {
		if g.cfg.AutoProvisionOrg && g.deps.Provisioner != nil {
			return g.provision(ctx, p)
		}
		return nil, unauthenticated("No organization membership")
	}
	// Newest membership wins.
	return g.activate(ctx, p, memberships[0])
}

// activate checks the membership's organization and builds the context.
func (g *Guard) activate(ctx context.Context, p domain.Principal, m *membershipdomain.Membership) (*AuthContext, error) {
	org, err := g.deps.Orgs.GetOrganizationByID(ctx, m.OrgID)
	if err != nil {
		return nil, fmt.Errorf("rbac: get organization: %w", err)
	}
	if org == nil {
		return nil, unauthenticated("Organization not found")
	}
	if org.Suspended() {
		return nil, forbidden("Organization is suspended")
	}

	return &AuthContext{
		OrgID:        m.OrgID,
		UserID:       p.UserID,
		Role:         m.Role,
		MembershipID: m.ID,
	}, nil
}

// provision creates a first organization with the caller as ADMIN.
func (g *Guard) provision(ctx context.Context, p domain.Principal) (*AuthContext, error) {
	now := time.Now().UTC()
	org := &orgdomain.Org{
		ID:        uuid.New().String(),
		Name:      defaultOrgName(p.Claims.Email),
		Status:    orgdomain.OrgStatusActive,
		CreatedAt: now,
	}
	m := &membershipdomain.Membership{
		ID:        uuid.New().String(),
		UserID:    p.UserID,
		OrgID:     org.ID,
		Role:      membershipdomain.RoleAdmin,
		CreatedAt: now,
	}
	u := &userdomain.User{ID: p.UserID, Email: p.Claims.Email, CreatedAt: now}
	active, err := g.deps.Provisioner.ProvisionWithAdmin(ctx, u, org, m)
	if err != nil {
		return nil, fmt.Errorf("rbac: provision organization: %w", err)
	}
	if active.ID != m.ID {
		return g.activate(ctx, p, active)
	}
	if g.deps.Audit != nil {
		g.deps.Audit.LogEvent(ctx, org.ID, p.UserID, audit.ActionOrgProvisioned, "organization", "")
	}
	return &AuthContext{OrgID: org.ID, UserID: p.UserID, Role: m.Role, MembershipID: m.ID}, nil
}

func defaultOrgName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "My Organization"
	}
	return local + "'s Organization"
}

func orgOf(ac *AuthContext) string {
	if ac == nil {
		return ""
	}
	return ac.OrgID
}

func userOf(ctx context.Context) string {
	id, _ := middleware.GetUserID(ctx)
	return id
}
