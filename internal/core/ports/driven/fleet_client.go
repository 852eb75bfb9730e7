package driven

import (
	"context"
	"encoding/json"
)

// FleetClient talks to the vehicle platform's Fleet API with a delegated
// access token. Each call is fire-and-forget exactly once: no retries,
// no idempotency key.
type FleetClient interface {
	// ListVehicles fetches the caller's vehicles. Non-2xx responses yield
	// domain.ErrVehicleListFailed with the provider's status and body.
	ListVehicles(ctx context.Context, accessToken string) (json.RawMessage, error)

	// Command issues a single vehicle command. The response body is
	// returned as JSON when parseable, otherwise wrapped as {"raw": text}.
	// Non-2xx responses yield domain.ErrCommandFailed with status and body.
	Command(ctx context.Context, accessToken, vehicleID, command string) (json.RawMessage, error)
}
