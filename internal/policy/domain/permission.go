package domain

// Permission names one capability a role may hold, as "<resource>:<verb>".
type Permission string

const (
	PermClaimsRead    Permission = "claims:read"
	PermClaimsWrite   Permission = "claims:write"
	PermLeadsRead     Permission = "leads:read"
	PermLeadsWrite    Permission = "leads:write"
	PermReportsExport Permission = "reports:export"
	PermMembersRead   Permission = "members:read"
	PermMembersManage Permission = "members:manage"
	PermBillingManage Permission = "billing:manage"
)

// All lists every known permission.
var All = []Permission{
	PermClaimsRead,
	PermClaimsWrite,
	PermLeadsRead,
	PermLeadsWrite,
	PermReportsExport,
	PermMembersRead,
	PermMembersManage,
	PermBillingManage,
}

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	for _, known := range All {
		if p == known {
			return true
		}
	}
	return false
}
