package engine

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/domain"
)

const allowQuery = "data.skyscraper.authz.allow"

//go:embed permissions.rego
var permissionsPolicy string

// OPAEvaluator decides role permissions with an embedded Rego policy.
// The query is prepared once; every call evaluates against the current input.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the permission policy. module overrides the embedded policy when non-empty.
func NewOPAEvaluator(ctx context.Context, module string) (*OPAEvaluator, error) {
	if module == "" {
		module = permissionsPolicy
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("permissions.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare permission policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// Allowed reports whether role holds perm. Unknown roles and permissions are denied.
func (e *OPAEvaluator) Allowed(ctx context.Context, role membershipdomain.Role, perm domain.Permission) (bool, error) {
	if !role.Valid() || !perm.Valid() {
		return false, nil
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"role":       string(role),
		"permission": string(perm),
	}))
	if err != nil {
		return false, fmt.Errorf("eval permission policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck evaluates a known-good decision. Returns nil when the engine answers correctly.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	ok, err := e.Allowed(ctx, membershipdomain.RoleAdmin, domain.PermBillingManage)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}
