package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
)

// Ensure SessionCodec implements the port
var _ driven.SessionCodec = (*SessionCodec)(nil)

// sessionClaims wraps domain.SessionClaims for JWT compatibility
type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// SessionCodec issues and verifies the service's session tokens as HS256
// JWTs. The signing secret is injected once at construction; nothing here
// reads process-wide configuration.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionCodec creates a session codec with the default 7-day TTL.
func NewSessionCodec(secret string) *SessionCodec {
	return NewSessionCodecWithTTL(secret, domain.SessionTTL)
}

// NewSessionCodecWithTTL creates a session codec with a custom TTL.
func NewSessionCodecWithTTL(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed session token bound to a user ID.
func (c *SessionCodec) Issue(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Open verifies a session token and extracts its claims. Every failure
// mode collapses to nil so callers have a single unauthenticated branch.
func (c *SessionCodec) Open(tokenString string) *domain.SessionClaims {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.UserID == "" {
		return nil
	}

	return &domain.SessionClaims{UserID: claims.UserID}
}

func (c *SessionCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	return c.secret, nil
}
