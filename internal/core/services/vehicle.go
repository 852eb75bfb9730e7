package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driving"
)

// Ensure vehicleService implements VehicleService
var _ driving.VehicleService = (*vehicleService)(nil)

// vehicleService implements the VehicleService interface.
type vehicleService struct {
	supplier driving.TokenSupplier
	fleet    driven.FleetClient
}

// NewVehicleService creates a new vehicle service.
func NewVehicleService(supplier driving.TokenSupplier, fleet driven.FleetClient) driving.VehicleService {
	return &vehicleService{
		supplier: supplier,
		fleet:    fleet,
	}
}

// ListVehicles proxies the Fleet API vehicle list for the user.
func (s *vehicleService) ListVehicles(ctx context.Context, userID string) (json.RawMessage, error) {
	accessToken, err := s.supplier.ValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.fleet.ListVehicles(ctx, accessToken)
}

// SendCommand dispatches one vehicle command for the user.
func (s *vehicleService) SendCommand(ctx context.Context, userID, vehicleID, command string) (json.RawMessage, error) {
	if !domain.CommandAllowed(command) {
		return nil, fmt.Errorf("%w: unknown command %q, expected one of: %s",
			domain.ErrBadRequest, command, strings.Join(domain.Commands(), ", "))
	}

	accessToken, err := s.supplier.ValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.fleet.Command(ctx, accessToken, vehicleID, command)
}
