package driving

import "context"

// LoginRedirect is the result of starting a login flow.
type LoginRedirect struct {
	// AuthorizationURL is where the browser is sent.
	AuthorizationURL string `json:"authorization_url"`

	// AttemptToken is the signed attempt container the transport layer
	// must store in the oauth_state cookie.
	AttemptToken string `json:"-"`
}

// CallbackRequest carries the provider's callback parameters plus the
// attempt cookie, if present.
type CallbackRequest struct {
	Code           string
	State          string
	ProviderError  string
	AttemptToken   string
	AttemptPresent bool
}

// CallbackResult is the outcome of a completed login.
type CallbackResult struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

// AuthFlowService runs the OAuth 2.0 + PKCE login flow against the
// vehicle platform.
type AuthFlowService interface {
	// BeginLogin generates PKCE parameters, signs the attempt container
	// and returns the provider authorize URL.
	BeginLogin(ctx context.Context) (*LoginRedirect, error)

	// CompleteLogin validates the callback, exchanges the code for
	// tokens, resolves the provider subject, upserts user and token
	// records, and issues a session token.
	CompleteLogin(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}
