package driven

import (
	"context"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
)

// UserStore persists local users keyed by the provider's subject identifier.
type UserStore interface {
	// UpsertByExternalSub creates the user on first sight of the subject
	// and is a no-op update afterwards. Returns the stored user either way.
	UpsertByExternalSub(ctx context.Context, externalSub string) (*domain.User, error)

	// Get retrieves a user by internal ID.
	// Returns domain.ErrNotFound if the user does not exist.
	Get(ctx context.Context, id string) (*domain.User, error)
}
