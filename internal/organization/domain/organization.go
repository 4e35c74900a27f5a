package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNameRequired  = errors.New("organization name is required")
	ErrInvalidStatus = errors.New("invalid organization status")
)

// Status is the lifecycle state of a tenant. Members of a suspended tenant are refused
// by the access guards even though their memberships remain.
type Status string

const (
	OrgStatusActive    Status = "active"
	OrgStatusSuspended Status = "suspended"
)

// Org is a tenant: a contractor company whose claims and members are scoped by ID.
type Org struct {
	ID        string
	Name      string
	Status    Status
	CreatedAt time.Time
}

// Suspended reports whether access to the tenant is currently blocked.
func (o *Org) Suspended() bool {
	return o.Status == OrgStatusSuspended
}

// Validate trims the name and defaults the status to active before insert.
func (o *Org) Validate() error {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return ErrNameRequired
	}
	switch o.Status {
	case "":
		o.Status = OrgStatusActive
	case OrgStatusActive, OrgStatusSuspended:
	default:
		return ErrInvalidStatus
	}
	return nil
}
