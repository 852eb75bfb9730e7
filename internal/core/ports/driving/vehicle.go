package driving

import (
	"context"
	"encoding/json"
)

// VehicleService proxies Fleet API calls for an authenticated user.
type VehicleService interface {
	// ListVehicles returns the provider's vehicle list payload verbatim.
	ListVehicles(ctx context.Context, userID string) (json.RawMessage, error)

	// SendCommand dispatches one vehicle command. Unknown command names
	// fail with domain.ErrBadRequest before any provider call.
	SendCommand(ctx context.Context, userID, vehicleID, command string) (json.RawMessage, error)
}
