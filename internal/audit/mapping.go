package audit

// ActionResource holds the action and resource recorded for one audit event.
type ActionResource struct {
	Action   string
	Resource string
}

const (
	ActionAccessDenied   = "access_denied"
	ActionRoleChanged    = "role_changed"
	ActionOrgProvisioned = "org_provisioned"
	ActionClaimCreated   = "claim_created"
)

// ForDenial returns the action and resource recorded when the named guard refuses a request.
// Unknown guards are recorded against "unknown".
func ForDenial(guard string) ActionResource {
	switch guard {
	case "require_admin", "require_role":
		return ActionResource{Action: ActionAccessDenied, Resource: "organization"}
	case "require_permission":
		return ActionResource{Action: ActionAccessDenied, Resource: "permission"}
	case "require_portal_auth":
		return ActionResource{Action: ActionAccessDenied, Resource: "claim"}
	default:
		return ActionResource{Action: ActionAccessDenied, Resource: "unknown"}
	}
}
