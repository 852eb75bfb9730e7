package domain

import "time"

// RefreshLeeway is how close to expiry a delegated token may get before
// it is refreshed instead of returned as-is.
const RefreshLeeway = 60 * time.Second

// DelegatedToken holds the vehicle platform's access/refresh token pair
// for one user. At most one live record per user; a refresh replaces both
// token strings and the expiry together.
type DelegatedToken struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fresh reports whether the access token is still usable without a refresh.
func (t *DelegatedToken) Fresh(now time.Time) bool {
	return t.ExpiresAt.Sub(now) > RefreshLeeway
}
