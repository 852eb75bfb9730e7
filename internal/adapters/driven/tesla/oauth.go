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

	"github.com/golang-jwt/jwt/v5"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
)

// Ensure OAuthClient implements the interface.
var _ driven.OAuthClient = (*OAuthClient)(nil)

// Scopes requested on every login. offline_access is required for a
// refresh token, the vehicle_* scopes for the Fleet API surface.
const oauthScopes = "openid offline_access user_data vehicle_device_data vehicle_cmds vehicle_charging_cmds"

// OAuthClientConfig holds dependencies for OAuthClient.
type OAuthClientConfig struct {
	// BaseURL is the OAuth host, e.g. https://auth.tesla.com
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// HTTPClient overrides the default client (useful for tests).
	HTTPClient *http.Client
}

// OAuthClient handles the authorization-code and refresh-token grants
// against the vehicle platform's OAuth endpoints.
type OAuthClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

// NewOAuthClient creates a new OAuth client.
func NewOAuthClient(config OAuthClientConfig) *OAuthClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &OAuthClient{
		baseURL:      strings.TrimSuffix(config.BaseURL, "/"),
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		redirectURI:  config.RedirectURI,
		httpClient:   httpClient,
	}
}

// AuthorizeURL constructs the authorization URL the browser is sent to.
func (c *OAuthClient) AuthorizeURL(state, codeChallenge string) string {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {c.clientID},
		"redirect_uri":          {c.redirectURI},
		"scope":                 {oauthScopes},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	return c.baseURL + "/oauth2/v3/authorize?" + params.Encode()
}

// ExchangeCode exchanges an authorization code plus PKCE verifier for tokens.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.ProviderToken, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"redirect_uri":  {c.redirectURI},
		"code_verifier": {codeVerifier},
	}
	return c.tokenGrant(ctx, params, domain.ErrTokenExchangeFailed)
}

// Refresh exchanges a refresh token for a new token pair.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*domain.ProviderToken, error) {
	params := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
	}
	return c.tokenGrant(ctx, params, domain.ErrRefreshFailed)
}

// tokenGrant posts a form-encoded grant to the token endpoint. Non-2xx
// responses are classified under the given sentinel with the provider's
// status and body attached.
func (c *OAuthClient) tokenGrant(ctx context.Context, params url.Values, sentinel error) (*domain.ProviderToken, error) {
	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/oauth2/v3/token",
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
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

	var token domain.ProviderToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &token, nil
}

// IdentitySubject extracts the sub claim from an identity token without
// verifying its signature. The token arrived over TLS directly from the
// token endpoint, so a structural decode is sufficient here.
func (c *OAuthClient) IdentitySubject(idToken string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("parse id token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("read sub claim: %w", err)
	}
	return sub, nil
}

// Userinfo fetches the subject identifier from the userinfo endpoint.
func (c *OAuthClient) Userinfo(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/oauth2/v3/userinfo", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewUpstreamError(domain.ErrSubjectUnresolved, resp.StatusCode, string(body))
	}

	var userinfo struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(body, &userinfo); err != nil {
		return "", fmt.Errorf("decode userinfo: %w", err)
	}
	return userinfo.Sub, nil
}
