package driven

import "github.com/fleetgate/fleetgate-core/internal/core/domain"

// SessionCodec issues and verifies the service's own session tokens.
type SessionCodec interface {
	// Issue creates a signed session token bound to a user ID.
	Issue(userID string) (string, error)

	// Open verifies a session token. It returns nil on any failure
	// (bad signature, expired, malformed) so callers treat "no valid
	// session" as a single branch.
	Open(token string) *domain.SessionClaims
}

// AttemptCodec issues and verifies the signed, time-boxed container that
// correlates a login redirect with exactly one callback. The codec is
// stateless: it would accept the same token twice before expiry. Single
// use is enforced by the caller deleting the cookie after consumption.
type AttemptCodec interface {
	// Issue creates a signed attempt token over state and code verifier.
	Issue(attempt *domain.OAuthAttempt) (string, error)

	// Open verifies an attempt token. Signature, expiry and structural
	// failures all yield domain.ErrInvalidAttempt.
	Open(token string) (*domain.OAuthAttempt, error)
}
