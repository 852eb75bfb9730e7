package domain

import "time"

// AttemptTTL bounds how long a login attempt stays valid between the
// redirect to the provider and the callback.
const AttemptTTL = 10 * time.Minute

// OAuthAttempt binds a CSRF state value and a PKCE code verifier to a
// single login attempt. It travels inside a signed cookie and is never
// stored server-side.
type OAuthAttempt struct {
	State        string `json:"state"`
	CodeVerifier string `json:"codeVerifier"`
}

// ProviderToken is the vehicle platform's response to a token-endpoint
// grant (authorization_code or refresh_token).
type ProviderToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Expiry computes the absolute expiry of the access token.
func (t *ProviderToken) Expiry(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}
