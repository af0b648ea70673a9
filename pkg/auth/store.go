package auth

import (
	"context"
	"database/sql"
	"fmt"
)

// KeyStore resolves opaque access tokens to credential records
type KeyStore interface {
	// FindActiveByToken returns the active key whose token matches exactly,
	// or ErrKeyNotFound. Inactive keys are filtered at the query, not by the
	// caller.
	FindActiveByToken(ctx context.Context, token string) (*APIKey, error)

	// Create persists a new key (administrative path)
	Create(ctx context.Context, key *APIKey) error

	// Revoke marks a key inactive (administrative path)
	Revoke(ctx context.Context, id int64) error
}

// PostgresKeyStore implements KeyStore using PostgreSQL
type PostgresKeyStore struct {
	db *sql.DB
}

// NewPostgresKeyStore creates a new PostgresKeyStore
func NewPostgresKeyStore(db *sql.DB) *PostgresKeyStore {
	return &PostgresKeyStore{db: db}
}

// FindActiveByToken looks up an active key by its access token
func (s *PostgresKeyStore) FindActiveByToken(ctx context.Context, token string) (*APIKey, error) {
	query := `
		SELECT id, access_token, user_id, active, internal, created_at, updated_at
		FROM api_keys
		WHERE access_token = $1 AND active = TRUE
	`

	key := &APIKey{}
	err := s.db.QueryRowContext(ctx, query, token).
		Scan(&key.ID, &key.AccessToken, &key.UserID, &key.Active, &key.Internal,
			&key.CreatedAt, &key.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	return key, nil
}

// Create persists a new API key
func (s *PostgresKeyStore) Create(ctx context.Context, key *APIKey) error {
	query := `
		INSERT INTO api_keys (access_token, user_id, active, internal)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, key.AccessToken, key.UserID, key.Active, key.Internal).
		Scan(&key.ID, &key.CreatedAt, &key.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// Revoke deactivates a key. Revoked keys stay on file for usage attribution.
func (s *PostgresKeyStore) Revoke(ctx context.Context, id int64) error {
	query := `UPDATE api_keys SET active = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revoke result: %w", err)
	}
	if rows == 0 {
		return ErrKeyNotFound
	}

	return nil
}
