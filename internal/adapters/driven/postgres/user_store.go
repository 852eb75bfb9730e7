package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UserStore = (*UserStore)(nil)

// UserStore implements driven.UserStore using PostgreSQL
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// UpsertByExternalSub creates a user for an unseen provider subject, or
// touches updated_at for a known one. The freshly generated ID is discarded
// when the subject already exists.
func (s *UserStore) UpsertByExternalSub(ctx context.Context, externalSub string) (*domain.User, error) {
	query := `
		INSERT INTO users (id, external_sub, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (external_sub) DO UPDATE SET
			updated_at = EXCLUDED.updated_at
		RETURNING id, external_sub, created_at, updated_at
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, uuid.NewString(), externalSub, time.Now()).Scan(
		&user.ID,
		&user.ExternalSub,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Get retrieves a user by internal ID
func (s *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, external_sub, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.ExternalSub,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
