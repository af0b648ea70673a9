package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a catalog record does not exist
var ErrNotFound = errors.New("catalog record not found")

// PostgresCatalog reads catalog records from PostgreSQL. It implements
// VersionSource and RepositorySource for the webhook subsystem.
type PostgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog creates a new PostgresCatalog
func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Repository resolves a repository record by id
func (c *PostgresCatalog) Repository(ctx context.Context, id int64) (*Repository, error) {
	query := `SELECT id, full_name, default_branch FROM repositories WHERE id = $1`

	repo := &Repository{}
	err := c.db.QueryRowContext(ctx, query, id).Scan(&repo.ID, &repo.FullName, &repo.DefaultBranch)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return repo, nil
}

// AnyVersion returns some existing version with its owning project. The
// choice is arbitrary; callers use it only to exercise delivery.
func (c *PostgresCatalog) AnyVersion(ctx context.Context) (*VersionRecord, error) {
	query := `
		SELECT v.id, v.project_id, v.number, v.published_at,
		       p.id, p.name, p.platform, p.description, p.homepage, p.language,
		       p.repository_url, p.stars, p.latest_release_published_at, p.normalized_licenses
		FROM versions v
		JOIN projects p ON p.id = v.project_id
		ORDER BY v.id
		LIMIT 1
	`

	record := &VersionRecord{}
	err := c.db.QueryRowContext(ctx, query).Scan(
		&record.Version.ID, &record.Version.ProjectID, &record.Version.Number, &record.Version.PublishedAt,
		&record.Project.ID, &record.Project.Name, &record.Project.Platform, &record.Project.Description,
		&record.Project.Homepage, &record.Project.Language, &record.Project.RepositoryURL,
		&record.Project.Stars, &record.Project.LatestReleasePublishedAt,
		pq.Array(&record.Project.NormalizedLicenses),
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	return record, nil
}
