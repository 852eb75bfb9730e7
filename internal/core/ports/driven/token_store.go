package driven

import (
	"context"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
)

// TokenStore persists one delegated token row per user.
type TokenStore interface {
	// Upsert creates or fully replaces the user's delegated token.
	Upsert(ctx context.Context, token *domain.DelegatedToken) error

	// Get retrieves the delegated token for a user.
	// Returns domain.ErrNotFound if no token exists.
	Get(ctx context.Context, userID string) (*domain.DelegatedToken, error)

	// Update overwrites access token, refresh token and expiry in one
	// statement. Returns domain.ErrNotFound if no row exists.
	Update(ctx context.Context, token *domain.DelegatedToken) error
}
