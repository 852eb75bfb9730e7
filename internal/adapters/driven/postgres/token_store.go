package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore implements driven.TokenStore using PostgreSQL. When a
// TokenCipher is configured the token strings are encrypted at rest.
type TokenStore struct {
	db     *DB
	cipher *TokenCipher
}

// NewTokenStore creates a TokenStore that stores tokens in plaintext.
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

// NewEncryptedTokenStore creates a TokenStore that encrypts token strings
// at rest.
func NewEncryptedTokenStore(db *DB, cipher *TokenCipher) *TokenStore {
	return &TokenStore{db: db, cipher: cipher}
}

// Upsert creates or fully replaces the user's delegated token
func (s *TokenStore) Upsert(ctx context.Context, token *domain.DelegatedToken) error {
	accessToken, refreshToken, err := s.seal(token)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO delegated_tokens (user_id, access_token, refresh_token, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		token.UserID,
		accessToken,
		refreshToken,
		token.ExpiresAt,
		time.Now(),
	)
	return err
}

// Get retrieves the delegated token for a user
func (s *TokenStore) Get(ctx context.Context, userID string) (*domain.DelegatedToken, error) {
	query := `
		SELECT user_id, access_token, refresh_token, expires_at, updated_at
		FROM delegated_tokens
		WHERE user_id = $1
	`

	var token domain.DelegatedToken
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&token.UserID,
		&token.AccessToken,
		&token.RefreshToken,
		&token.ExpiresAt,
		&token.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.open(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Update overwrites access token, refresh token and expiry together in a
// single statement, so no partial update is ever observable.
func (s *TokenStore) Update(ctx context.Context, token *domain.DelegatedToken) error {
	accessToken, refreshToken, err := s.seal(token)
	if err != nil {
		return err
	}

	query := `
		UPDATE delegated_tokens
		SET access_token = $1, refresh_token = $2, expires_at = $3, updated_at = $4
		WHERE user_id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		accessToken,
		refreshToken,
		token.ExpiresAt,
		time.Now(),
		token.UserID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// seal applies at-rest encryption to the token pair when configured.
func (s *TokenStore) seal(token *domain.DelegatedToken) (string, string, error) {
	if s.cipher == nil {
		return token.AccessToken, token.RefreshToken, nil
	}

	accessToken, err := s.cipher.Seal(token.AccessToken)
	if err != nil {
		return "", "", fmt.Errorf("seal access token: %w", err)
	}
	refreshToken, err := s.cipher.Seal(token.RefreshToken)
	if err != nil {
		return "", "", fmt.Errorf("seal refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

// open reverses at-rest encryption in place when configured.
func (s *TokenStore) open(token *domain.DelegatedToken) error {
	if s.cipher == nil {
		return nil
	}

	accessToken, err := s.cipher.Open(token.AccessToken)
	if err != nil {
		return fmt.Errorf("open access token: %w", err)
	}
	refreshToken, err := s.cipher.Open(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("open refresh token: %w", err)
	}

	token.AccessToken = accessToken
	token.RefreshToken = refreshToken
	return nil
}
