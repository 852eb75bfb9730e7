package driving

import "context"

// TokenSupplier hands out currently-valid delegated access tokens,
// refreshing them against the provider first when near expiry.
type TokenSupplier interface {
	// ValidAccessToken returns an access token with more than the refresh
	// leeway left. Returns domain.ErrNoToken if the user has no delegated
	// token and domain.ErrRefreshFailed if a needed refresh fails; on
	// refresh failure the stored record is left untouched.
	ValidAccessToken(ctx context.Context, userID string) (string, error)
}
