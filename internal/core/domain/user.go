package domain

import "time"

// User is a local account correlated 1:1 with the vehicle platform's
// immutable subject identifier. Created on first successful callback,
// never deleted by the auth flow.
type User struct {
	ID          string    `json:"id"`
	ExternalSub string    `json:"external_sub"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
