package domain

import "time"

// SessionTTL is how long an issued session token stays valid. Expiry is
// the only invalidation mechanism; there is no server-side revocation list.
const SessionTTL = 7 * 24 * time.Hour

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	UserID string `json:"userId"`
}
