package engine

import (
	"context"
	"testing"

	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
)

func newEvaluator(t *testing.T) *OPAEvaluator {
	t.Helper()
	e, err := NewOPAEvaluator(context.Background(), "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return e
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := newEvaluator(t)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_Allowed(t *testing.T) {
	e := newEvaluator(t)
	testCases := []struct {
		role membershipdomain.Role
		perm domain.Permission
		want bool
	}{
		{membershipdomain.RoleAdmin, domain.PermBillingManage, true},
		{membershipdomain.RoleAdmin, domain.PermMembersManage, true},
		{membershipdomain.RoleManager, domain.PermMembersRead, true},
		{membershipdomain.RoleManager, domain.PermReportsExport, true},
		{membershipdomain.RoleManager, domain.PermMembersManage, false},
		{membershipdomain.RoleManager, domain.PermBillingManage, false},
		{membershipdomain.RoleMember, domain.PermClaimsWrite, true},
		{membershipdomain.RoleMember, domain.PermReportsExport, false},
		{membershipdomain.RoleViewer, domain.PermClaimsRead, true},
		{membershipdomain.RoleViewer, domain.PermClaimsWrite, false},
	}
	for _, tc := range testCases {
		t.Run(string(tc.role)+"/"+string(tc.perm), func(t *testing.T) {
			got, err := e.Allowed(context.Background(), tc.role, tc.perm)
			if err != nil {
				t.Fatalf("Allowed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Allowed(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
			}
		})
	}
}

func TestOPAEvaluator_UnknownInputsDenied(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()
	if ok, _ := e.Allowed(ctx, membershipdomain.Role("OWNER"), domain.PermClaimsRead); ok {
		t.Error("unknown role must be denied")
	}
	if ok, _ := e.Allowed(ctx, membershipdomain.RoleAdmin, domain.Permission("claims:delete")); ok {
		t.Error("unknown permission must be denied")
	}
}

func TestOPAEvaluator_CustomModule(t *testing.T) {
	deny := `package skyscraper.authz

default allow := false
`
	e, err := NewOPAEvaluator(context.Background(), deny)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	if err := e.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck should fail when the policy denies admin")
	}
}

func TestNewOPAEvaluator_InvalidModule(t *testing.T) {
	if _, err := NewOPAEvaluator(context.Background(), "package broken\nallow if {"); err == nil {
		t.Fatal("expected compile error")
	}
}
