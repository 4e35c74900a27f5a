package rbac

import (
	"context"

	clientdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/identity/domain"
	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	orgdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/domain"
	policydomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/middleware"
	userdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
)

// mockMemberships implements MembershipLister. Lists are returned in the order given,
// which callers set up newest first like the repository.
type mockMemberships struct {
	byUser map[string][]*membershipdomain.Membership
	err    error
	calls  int
}

func (m *mockMemberships) ListMembershipsByUser(ctx context.Context, userID string) ([]*membershipdomain.Membership, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.byUser[userID], nil
}

type mockOrgs struct {
	orgs map[string]*orgdomain.Org
	err  error
}

func (m *mockOrgs) GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orgs[id], nil
}

// mockProvisioner returns existing instead of m when set, like a request that lost the
// per-user provisioning race.
type mockProvisioner struct {
	user     *userdomain.User
	org      *orgdomain.Org
	m        *membershipdomain.Membership
	existing *membershipdomain.Membership
	err      error
}

func (p *mockProvisioner) ProvisionWithAdmin(ctx context.Context, u *userdomain.User, o *orgdomain.Org, m *membershipdomain.Membership) (*membershipdomain.Membership, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.user = u
	if p.existing != nil {
		return p.existing, nil
	}
	p.org, p.m = o, m
	return m, nil
}

type mockUsers struct {
	users map[string]*userdomain.User
	err   error
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[id], nil
}

type mockClients struct {
	clients map[string]*clientdomain.Client
}

func (m *mockClients) GetClientByEmail(ctx context.Context, email string) (*clientdomain.Client, error) {
	return m.clients[email], nil
}

// mockGrants implements ClaimGrantChecker keyed "email:claim".
type mockGrants struct {
	grants map[string]bool
	err    error
	calls  int
}

func (m *mockGrants) HasClaimAccess(ctx context.Context, email, claimID string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.grants[email+":"+claimID], nil
}

// mockPermissions implements PermissionEvaluator keyed "role:permission".
type mockPermissions struct {
	allow map[string]bool
	err   error
}

func (m *mockPermissions) Allowed(ctx context.Context, role membershipdomain.Role, perm policydomain.Permission) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.allow[string(role)+":"+string(perm)], nil
}

type auditEvent struct {
	orgID, userID, action, resource string
}

type mockAudit struct {
	events []auditEvent
}

func (m *mockAudit) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	m.events = append(m.events, auditEvent{orgID, userID, action, resource})
}

// mockMetrics counts outcomes keyed "guard:outcome".
type mockMetrics struct {
	counts map[string]int
}

func (m *mockMetrics) GuardOutcome(guard, outcome string) {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[guard+":"+outcome]++
}

func withUser(userID string) context.Context {
	return middleware.WithPrincipal(context.Background(), domain.Principal{UserID: userID, SessionID: "sess-1"})
}

func membership(id, userID, orgID string, role membershipdomain.Role) *membershipdomain.Membership {
	return &membershipdomain.Membership{ID: id, UserID: userID, OrgID: orgID, Role: role}
}

func activeOrg(id string) *orgdomain.Org {
	return &orgdomain.Org{ID: id, Name: id, Status: orgdomain.OrgStatusActive}
}

type denial struct {
	guard, orgID, userID, code string
}

type mockEvents struct {
	denials []denial
}

func (m *mockEvents) RecordDenial(ctx context.Context, guard, orgID, userID, code, message string) {
	m.denials = append(m.denials, denial{guard, orgID, userID, code})
}
