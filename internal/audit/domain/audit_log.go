package domain

import "time"

// AuditLog is one recorded access decision or tenant change. Metadata holds a JSON object
// whose keys depend on Action; it is empty when the event carries no detail.
type AuditLog struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
