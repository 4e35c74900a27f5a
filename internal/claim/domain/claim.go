package domain

import (
	"errors"
	"time"
)

// Claim is an insurance claim owned by one organization.
type Claim struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"orgId"`
	ClaimNumber string    `json:"claimNumber"`
	Carrier     string    `json:"carrier"`
	Status      Status    `json:"status"`
	InsuredName string    `json:"insuredName"`
	LossDate    time.Time `json:"lossDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInspection Status = "inspection"
	StatusApproved   Status = "approved"
	StatusDenied     Status = "denied"
	StatusClosed     Status = "closed"
)

// Validate validates the claim for persistence. Returns an error describing the first validation failure.
func (c *Claim) Validate() error {
	if c.OrgID == "" {
		return errors.New("org is required")
	}
	if c.ClaimNumber == "" {
		return errors.New("claim number is required")
	}
	if c.Status == "" {
		c.Status = StatusOpen
	}
	switch c.Status {
	case StatusOpen, StatusInspection, StatusApproved, StatusDenied, StatusClosed:
	default:
		return errors.New("invalid status")
	}
	return nil
}
