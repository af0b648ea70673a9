package webhooks

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EndpointStore persists webhook endpoints and their delivery state
type EndpointStore interface {
	Create(ctx context.Context, endpoint *Endpoint) error
	Get(ctx context.Context, id int64) (*Endpoint, error)
	ListByRepository(ctx context.Context, repositoryID int64) ([]*Endpoint, error)
	// Update replaces the endpoint URL. A changed URL clears last_sent_at and
	// last_response together; an unchanged URL leaves them untouched.
	Update(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
	// RecordDelivery writes both delivery-outcome fields as a single record
	// update, once per delivery attempt. Concurrent attempts race
	// last-writer-wins; each write is internally consistent.
	RecordDelivery(ctx context.Context, id int64, sentAt time.Time, response string) error
}

// PostgresEndpointStore implements EndpointStore using PostgreSQL
type PostgresEndpointStore struct {
	db *sql.DB
}

// NewPostgresEndpointStore creates a new PostgresEndpointStore
func NewPostgresEndpointStore(db *sql.DB) *PostgresEndpointStore {
	return &PostgresEndpointStore{db: db}
}

const endpointColumns = `id, repository_id, user_id, url, last_sent_at, last_response, created_at, updated_at`

func scanEndpoint(row interface{ Scan(...interface{}) error }) (*Endpoint, error) {
	e := &Endpoint{}
	err := row.Scan(&e.ID, &e.RepositoryID, &e.UserID, &e.URL,
		&e.LastSentAt, &e.LastResponse, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create persists a new endpoint
func (s *PostgresEndpointStore) Create(ctx context.Context, endpoint *Endpoint) error {
	if err := ValidateURL(endpoint.URL); err != nil {
		return err
	}

	query := `
		INSERT INTO web_hooks (repository_id, user_id, url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, endpoint.RepositoryID, endpoint.UserID, endpoint.URL).
		Scan(&endpoint.ID, &endpoint.CreatedAt, &endpoint.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create webhook endpoint: %w", err)
	}

	return nil
}

// Get retrieves an endpoint by id
func (s *PostgresEndpointStore) Get(ctx context.Context, id int64) (*Endpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM web_hooks WHERE id = $1`

	endpoint, err := scanEndpoint(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrEndpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook endpoint: %w", err)
	}

	return endpoint, nil
}

// ListByRepository retrieves all endpoints registered for a repository
func (s *PostgresEndpointStore) ListByRepository(ctx context.Context, repositoryID int64) ([]*Endpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM web_hooks WHERE repository_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook endpoints: %w", err)
	}
	defer rows.Close()

	endpoints := make([]*Endpoint, 0)
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook endpoint: %w", err)
		}
		endpoints = append(endpoints, endpoint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list webhook endpoints: %w", err)
	}

	return endpoints, nil
}

// Update replaces the endpoint URL. The CASE expressions read the old row's
// url, so a changed URL drops both outcome fields in the same statement that
// stores the new one; stale outcomes for a superseded URL never linger.
func (s *PostgresEndpointStore) Update(ctx context.Context, id int64, url string) error {
	if err := ValidateURL(url); err != nil {
		return err
	}

	query := `
		UPDATE web_hooks
		SET url = $2,
		    last_sent_at = CASE WHEN url <> $2 THEN NULL ELSE last_sent_at END,
		    last_response = CASE WHEN url <> $2 THEN NULL ELSE last_response END,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to update webhook endpoint: %w", err)
	}

	return checkFound(result)
}

// Delete removes an endpoint
func (s *PostgresEndpointStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM web_hooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook endpoint: %w", err)
	}

	return checkFound(result)
}

// RecordDelivery persists the outcome of one delivery attempt
func (s *PostgresEndpointStore) RecordDelivery(ctx context.Context, id int64, sentAt time.Time, response string) error {
	query := `
		UPDATE web_hooks
		SET last_sent_at = $2, last_response = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, sentAt, response)
	if err != nil {
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}

	return checkFound(result)
}

func checkFound(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return ErrEndpointNotFound
	}
	return nil
}
