package driven

import (
	"context"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
)

// OAuthClient talks to the vehicle platform's OAuth endpoints.
type OAuthClient interface {
	// AuthorizeURL builds the browser redirect URL for the authorize
	// endpoint, carrying state and the S256 code challenge.
	AuthorizeURL(state, codeChallenge string) string

	// ExchangeCode exchanges an authorization code plus PKCE verifier for
	// tokens. Non-2xx responses yield domain.ErrTokenExchangeFailed with
	// the provider's status and body attached.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.ProviderToken, error)

	// Refresh exchanges a refresh token for a new token pair. Non-2xx
	// responses yield domain.ErrRefreshFailed with status and body.
	Refresh(ctx context.Context, refreshToken string) (*domain.ProviderToken, error)

	// IdentitySubject extracts the sub claim from an identity token.
	// The decode is purely structural; no signature check is performed
	// against the provider's keys.
	IdentitySubject(idToken string) (string, error)

	// Userinfo fetches the subject identifier from the userinfo endpoint.
	// Fallback path when the token response carries no identity token.
	Userinfo(ctx context.Context, accessToken string) (string, error)
}
