package driving

import (
	"context"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
)

// UserService exposes the authenticated user's own account record.
type UserService interface {
	// Profile returns the user's stored record. domain.ErrNotFound when
	// the session references a user that no longer exists.
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
