package domain

import (
	"errors"
	"time"
)

// User is the local record of an identity-provider user. ID is the provider's subject.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	return nil
}
