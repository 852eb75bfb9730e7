package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driving"
)

// Ensure authFlowService implements AuthFlowService
var _ driving.AuthFlowService = (*authFlowService)(nil)

// AuthFlowConfig holds collaborators for the auth flow service.
type AuthFlowConfig struct {
	// Users persists local accounts keyed by provider subject.
	Users driven.UserStore

	// Tokens persists delegated token pairs.
	Tokens driven.TokenStore

	// OAuth talks to the provider's OAuth endpoints.
	OAuth driven.OAuthClient

	// Sessions issues this service's own session tokens.
	Sessions driven.SessionCodec

	// Attempts signs and verifies login-attempt containers.
	Attempts driven.AttemptCodec

	// Logger receives flow-level events. Defaults to slog.Default().
	Logger *slog.Logger
}

// authFlowService implements the AuthFlowService interface.
type authFlowService struct {
	users    driven.UserStore
	tokens   driven.TokenStore
	oauth    driven.OAuthClient
	sessions driven.SessionCodec
	attempts driven.AttemptCodec
	logger   *slog.Logger
}

// NewAuthFlowService creates a new auth flow service.
func NewAuthFlowService(cfg AuthFlowConfig) driving.AuthFlowService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &authFlowService{
		users:    cfg.Users,
		tokens:   cfg.Tokens,
		oauth:    cfg.OAuth,
		sessions: cfg.Sessions,
		attempts: cfg.Attempts,
		logger:   logger,
	}
}

// BeginLogin starts a login flow. It generates independent random state and
// PKCE verifier values, signs them into an attempt token for the cookie, and
// builds the provider authorize URL.
func (s *authFlowService) BeginLogin(ctx context.Context) (*driving.LoginRedirect, error) {
	state, err := randomURLSafe(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	codeVerifier, err := randomURLSafe(32)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}

	attemptToken, err := s.attempts.Issue(&domain.OAuthAttempt{
		State:        state,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		return nil, fmt.Errorf("issue attempt token: %w", err)
	}

	return &driving.LoginRedirect{
		AuthorizationURL: s.oauth.AuthorizeURL(state, codeChallenge(codeVerifier)),
		AttemptToken:     attemptToken,
	}, nil
}

// CompleteLogin handles the provider callback. It validates the attempt,
// exchanges the code, resolves the provider subject, upserts user and token
// records and issues a session token. The transport layer is responsible for
// deleting the attempt cookie afterwards (single-use enforcement).
func (s *authFlowService) CompleteLogin(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResult, error) {
	if req.ProviderError != "" {
		// Keep the provider's error string attached; the transport layer
		// passes it through to the client.
		return nil, domain.NewUpstreamError(domain.ErrOAuthDenied, 0, req.ProviderError)
	}
	if req.Code == "" || req.State == "" {
		return nil, fmt.Errorf("%w: missing code or state", domain.ErrBadRequest)
	}
	if !req.AttemptPresent {
		return nil, domain.ErrMissingAttempt
	}

	attempt, err := s.attempts.Open(req.AttemptToken)
	if err != nil {
		return nil, err
	}

	// CSRF defense: the state echoed by the provider must match the one
	// bound into the signed attempt.
	if req.State != attempt.State {
		return nil, domain.ErrStateMismatch
	}

	token, err := s.oauth.ExchangeCode(ctx, req.Code, attempt.CodeVerifier)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	sub := s.resolveSubject(ctx, token)
	if sub == "" {
		return nil, domain.ErrSubjectUnresolved
	}

	user, err := s.users.UpsertByExternalSub(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	if err := s.tokens.Upsert(ctx, &domain.DelegatedToken{
		UserID:       user.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry(time.Now()),
	}); err != nil {
		return nil, fmt.Errorf("upsert delegated token: %w", err)
	}

	sessionToken, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.logger.Info("login completed", "user_id", user.ID)

	return &driving.CallbackResult{
		UserID:       user.ID,
		SessionToken: sessionToken,
	}, nil
}

// resolveSubject extracts the provider subject, preferring the identity
// token's sub claim and falling back to the userinfo endpoint.
func (s *authFlowService) resolveSubject(ctx context.Context, token *domain.ProviderToken) string {
	if token.IDToken != "" {
		sub, err := s.oauth.IdentitySubject(token.IDToken)
		if err == nil && sub != "" {
			return sub
		}
		if err != nil {
			s.logger.Warn("identity token decode failed, falling back to userinfo", "error", err)
		}
	}

	sub, err := s.oauth.Userinfo(ctx, token.AccessToken)
	if err != nil {
		s.logger.Warn("userinfo lookup failed", "error", err)
		return ""
	}
	return sub
}

// randomURLSafe returns n random bytes as unpadded URL-safe base64.
func randomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// codeChallenge creates a PKCE code challenge from a verifier (S256 method).
func codeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
