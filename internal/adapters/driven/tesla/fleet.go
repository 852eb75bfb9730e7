package tesla

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
)

// Ensure FleetClient implements the interface.
var _ driven.FleetClient = (*FleetClient)(nil)

// FleetClientConfig holds dependencies for FleetClient.
type FleetClientConfig struct {
	// BaseURL is the regional Fleet API host.
	BaseURL string

	// HTTPClient overrides the default client (useful for tests).
	HTTPClient *http.Client
}

// FleetClient calls the vehicle platform's Fleet API with a delegated
// access token. Calls are issued exactly once with no retries, so a
// command is never accidentally repeated.
type FleetClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewFleetClient creates a new Fleet API client.
func NewFleetClient(config FleetClientConfig) *FleetClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &FleetClient{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// ListVehicles fetches the account's vehicles.
func (c *FleetClient) ListVehicles(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.call(ctx, "GET", "/api/1/vehicles", accessToken, domain.ErrVehicleListFailed)
}

// Command issues a single named command against a vehicle.
func (c *FleetClient) Command(ctx context.Context, accessToken, vehicleID, command string) (json.RawMessage, error) {
	path := "/api/1/vehicles/" + url.PathEscape(vehicleID) + "/command/" + url.PathEscape(command)
	return c.call(ctx, "POST", path, accessToken, domain.ErrCommandFailed)
}

func (c *FleetClient) call(ctx context.Context, method, path, accessToken string, sentinel error) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewUpstreamError(sentinel, resp.StatusCode, string(body))
	}

	return normalizeBody(body), nil
}

// normalizeBody passes valid JSON through untouched and wraps anything
// else so callers always receive a JSON document.
func normalizeBody(body []byte) json.RawMessage {
	if json.Valid(body) && len(body) > 0 {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(body)})
	return json.RawMessage(wrapped)
}
