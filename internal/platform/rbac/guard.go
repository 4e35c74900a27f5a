package rbac

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit"
	clientdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/domain"
	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	orgdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/domain"
	policydomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
	userdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
)

const (
	guardRequireAuth       = "require_auth"
	guardRequireAdmin      = "require_admin"
	guardRequireRole       = "require_role"
	guardRequirePermission = "require_permission"
	guardRequirePortalAuth = "require_portal_auth"
)

// MembershipLister returns all of a user's memberships, most recently created first.
type MembershipLister interface {
	ListMembershipsByUser(ctx context.Context, userID string) ([]*membershipdomain.Membership, error)
}

// OrgGetter returns an organization by id, or nil if it does not exist.
type OrgGetter interface {
	GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error)
}

// OrgProvisioner mirrors the user and creates an organization with its founding membership,
// returning the user's newest membership, which is not m when a concurrent request won.
type OrgProvisioner interface {
	ProvisionWithAdmin(ctx context.Context, u *userdomain.User, o *orgdomain.Org, m *membershipdomain.Membership) (*membershipdomain.Membership, error)
}

// UserGetter is the current-user lookup: it returns the user record for an identity subject, or nil.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// ClientGetter returns the portal client record for an email, or nil.
type ClientGetter interface {
	GetClientByEmail(ctx context.Context, email string) (*clientdomain.Client, error)
}

// ClaimGrantChecker reports whether a claim-access grant exists for (email, claimID).
type ClaimGrantChecker interface {
	HasClaimAccess(ctx context.Context, email, claimID string) (bool, error)
}

// PermissionEvaluator decides whether a role holds a permission.
type PermissionEvaluator interface {
	Allowed(ctx context.Context, role membershipdomain.Role, perm policydomain.Permission) (bool, error)
}

// DenialRecorder receives every guard denial. Implementations must not block.
type DenialRecorder interface {
	RecordDenial(ctx context.Context, guard, orgID, userID, code, message string)
}

// Metrics counts guard outcomes.
type Metrics interface {
	GuardOutcome(guard, outcome string)
}

// GuardDeps are the collaborators the guards read from. Memberships, Orgs, Users and
// Grants are required; the rest may be nil.
type GuardDeps struct {
	Memberships MembershipLister
	Orgs        OrgGetter
	Provisioner OrgProvisioner
	Users       UserGetter
	Clients     ClientGetter
	Grants      ClaimGrantChecker
	Permissions PermissionEvaluator
	Audit       audit.AuditLogger
	Events      DenialRecorder
	Metrics     Metrics
}

// GuardConfig holds the guard behaviour switches. It is built once from process config.
type GuardConfig struct {
	// AutoProvisionOrg creates an organization and an ADMIN membership for a signed-in
	// user who has none, instead of returning UNAUTHENTICATED.
	AutoProvisionOrg bool
}

// Guard performs request-scoped authorization. It holds no per-user state:
// every call reads memberships and grants from the store.
type Guard struct {
	deps   GuardDeps
	cfg    GuardConfig
	tracer trace.Tracer
}

// NewGuard returns a Guard.
func NewGuard(deps GuardDeps, cfg GuardConfig) *Guard {
	return &Guard{
		deps:   deps,
		cfg:    cfg,
		tracer: otel.Tracer("skyscraper/rbac"),
	}
}

// AuthContext is the pro-side guard result. OrgID is the only org id handlers may scope queries by.
type AuthContext struct {
	OrgID        string
	UserID       string
	Role         membershipdomain.Role
	MembershipID string
}

// PortalAuthContext is the portal guard result. ClientID is empty when the user has no client record.
type PortalAuthContext struct {
	UserID   string
	Email    string
	ClientID string
}

func (g *Guard) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, name)
}

// finish records the outcome of one public guard call on the span, in metrics, as a
// denial event and, for FORBIDDEN decisions, in the audit log.
func (g *Guard) finish(ctx context.Context, span trace.Span, guard, orgID, userID string, err error) {
	defer span.End()

	outcome := "ok"
	if ae, ok := AsAuthError(err); ok {
		outcome = string(ae.Code)
		if g.deps.Events != nil {
			g.deps.Events.RecordDenial(ctx, guard, orgID, userID, string(ae.Code), ae.Message)
		}
		if ae.Code == CodeForbidden && g.deps.Audit != nil {
			ar := audit.ForDenial(guard)
			meta, _ := json.Marshal(map[string]string{"guard": guard, "message": ae.Message})
			g.deps.Audit.LogEvent(ctx, orgID, userID, ar.Action, ar.Resource, string(meta))
		}
	} else if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "guard lookup failed")
	}
	span.SetAttributes(attribute.String("auth.outcome", outcome))
	if orgID != "" {
		span.SetAttributes(attribute.String("org.id", orgID))
	}
	if g.deps.Metrics != nil {
		g.deps.Metrics.GuardOutcome(guard, outcome)
	}
}
