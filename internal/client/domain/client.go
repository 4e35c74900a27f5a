package domain

import (
	"errors"
	"strings"
	"time"
)

// Client is a homeowner or end-client using the portal. OrgID is the servicing
// organization, when one is known.
type Client struct {
	ID        string
	UserID    string
	Email     string
	OrgID     string
	CreatedAt time.Time
}

// ClaimAccess permits the client identified by Email to view one claim.
// No row means no access.
type ClaimAccess struct {
	ID        string
	Email     string
	ClaimID   string
	CreatedAt time.Time
}

// NormalizeEmail lowercases and trims an address so grant lookups are not case-sensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the client for persistence.
func (c *Client) Validate() error {
	if c.Email == "" {
		return errors.New("email is required")
	}
	c.Email = NormalizeEmail(c.Email)
	return nil
}
