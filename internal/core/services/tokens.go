package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driving"
)

// Ensure tokenSupplier implements TokenSupplier
var _ driving.TokenSupplier = (*tokenSupplier)(nil)

const (
	refreshLockPrefix = "token-refresh:"
	refreshLockTTL    = 30 * time.Second

	// How long a lock loser waits for the winner's refresh to land
	// before refreshing on its own as a last resort.
	refreshWaitInterval = 200 * time.Millisecond
	refreshWaitAttempts = 10
)

// TokenSupplierConfig holds collaborators for the token supplier.
type TokenSupplierConfig struct {
	// Tokens persists delegated token pairs.
	Tokens driven.TokenStore

	// OAuth performs the refresh grant against the provider.
	OAuth driven.OAuthClient

	// Lock serializes per-user refreshes across instances. Optional;
	// without it concurrent near-expiry callers may each refresh.
	Lock driven.DistributedLock

	// Logger receives refresh events. Defaults to slog.Default().
	Logger *slog.Logger
}

// tokenSupplier implements the TokenSupplier interface.
type tokenSupplier struct {
	tokens driven.TokenStore
	oauth  driven.OAuthClient
	lock   driven.DistributedLock
	logger *slog.Logger
}

// NewTokenSupplier creates a new token supplier.
func NewTokenSupplier(cfg TokenSupplierConfig) driving.TokenSupplier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &tokenSupplier{
		tokens: cfg.Tokens,
		oauth:  cfg.OAuth,
		lock:   cfg.Lock,
		logger: logger,
	}
}

// ValidAccessToken returns a delegated access token with more than the
// refresh leeway left, refreshing it first when necessary.
func (s *tokenSupplier) ValidAccessToken(ctx context.Context, userID string) (string, error) {
	token, err := s.tokens.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("get delegated token: %w", err)
	}

	if token.Fresh(time.Now()) {
		return token.AccessToken, nil
	}

	return s.refresh(ctx, userID, token)
}

// refresh performs the refresh grant under a per-user lock so that
// concurrent near-expiry callers converge on one provider call. A caller
// that loses the lock race waits for the winner's update to land and
// returns the refreshed token from the store.
func (s *tokenSupplier) refresh(ctx context.Context, userID string, token *domain.DelegatedToken) (string, error) {
	if s.lock != nil {
		name := refreshLockPrefix + userID

		acquired, err := s.lock.Acquire(ctx, name, refreshLockTTL)
		if err != nil {
			s.logger.Warn("refresh lock unavailable, proceeding unguarded", "user_id", userID, "error", err)
		} else if acquired {
			defer func() {
				if err := s.lock.Release(context.WithoutCancel(ctx), name); err != nil {
					s.logger.Warn("refresh lock release failed", "user_id", userID, "error", err)
				}
			}()

			// Re-read under the lock: the previous holder may have
			// refreshed while we waited to acquire.
			current, err := s.tokens.Get(ctx, userID)
			if err == nil && current.Fresh(time.Now()) {
				return current.AccessToken, nil
			}
			if err == nil {
				token = current
			}
		} else {
			if accessToken, ok := s.awaitRefresh(ctx, userID); ok {
				return accessToken, nil
			}
			s.logger.Warn("refresh lock holder did not finish in time, refreshing anyway", "user_id", userID)
		}
	}

	refreshed, err := s.oauth.Refresh(ctx, token.RefreshToken)
	if err != nil {
		// Keep the stored record untouched; the caller must retry or
		// force a re-login.
		return "", fmt.Errorf("refresh delegated token: %w", err)
	}

	token.AccessToken = refreshed.AccessToken
	if refreshed.RefreshToken != "" {
		// Provider may rotate the refresh token.
		token.RefreshToken = refreshed.RefreshToken
	}
	token.ExpiresAt = refreshed.Expiry(time.Now())

	if err := s.tokens.Update(ctx, token); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	s.logger.Info("delegated token refreshed", "user_id", userID, "expires_at", token.ExpiresAt)
	return token.AccessToken, nil
}

// awaitRefresh polls the store while another instance holds the refresh
// lock. Returns the access token once the winner's update lands.
func (s *tokenSupplier) awaitRefresh(ctx context.Context, userID string) (string, bool) {
	for i := 0; i < refreshWaitAttempts; i++ {
		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(refreshWaitInterval):
		}

		current, err := s.tokens.Get(ctx, userID)
		if err == nil && current.Fresh(time.Now()) {
			return current.AccessToken, true
		}
	}
	return "", false
}
