package services

import (
	"context"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driving"
)

// Ensure userService implements UserService
var _ driving.UserService = (*userService)(nil)

// userService implements the UserService interface.
type userService struct {
	users driven.UserStore
}

// NewUserService creates a new user service.
func NewUserService(users driven.UserStore) driving.UserService {
	return &userService{users: users}
}

// Profile returns the stored account record for a user ID.
func (s *userService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}
