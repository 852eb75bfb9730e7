package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
)

// Ensure AttemptCodec implements the port
var _ driven.AttemptCodec = (*AttemptCodec)(nil)

// attemptClaims wraps domain.OAuthAttempt for JWT compatibility
type attemptClaims struct {
	State        string `json:"state"`
	CodeVerifier string `json:"codeVerifier"`
	jwt.RegisteredClaims
}

// AttemptCodec signs and verifies the login-attempt container carried in
// the oauth_state cookie. Stateless: it will accept the same token any
// number of times before expiry, so the callback handler must delete the
// cookie after consuming it.
type AttemptCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewAttemptCodec creates an attempt codec with the default 10-minute TTL.
func NewAttemptCodec(secret string) *AttemptCodec {
	return NewAttemptCodecWithTTL(secret, domain.AttemptTTL)
}

// NewAttemptCodecWithTTL creates an attempt codec with a custom TTL.
func NewAttemptCodecWithTTL(secret string, ttl time.Duration) *AttemptCodec {
	return &AttemptCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed, time-boxed token over state and code verifier.
func (c *AttemptCodec) Issue(attempt *domain.OAuthAttempt) (string, error) {
	now := time.Now()
	claims := attemptClaims{
		State:        attempt.State,
		CodeVerifier: attempt.CodeVerifier,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Open verifies an attempt token. Bad signature, expiry and malformed
// input all surface as domain.ErrInvalidAttempt.
func (c *AttemptCodec) Open(tokenString string) (*domain.OAuthAttempt, error) {
	token, err := jwt.ParseWithClaims(tokenString, &attemptClaims{}, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAttempt, err)
	}

	claims, ok := token.Claims.(*attemptClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidAttempt
	}
	if claims.State == "" || claims.CodeVerifier == "" {
		return nil, fmt.Errorf("%w: incomplete attempt payload", domain.ErrInvalidAttempt)
	}

	return &domain.OAuthAttempt{
		State:        claims.State,
		CodeVerifier: claims.CodeVerifier,
	}, nil
}

func (c *AttemptCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	return c.secret, nil
}
