package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresService is a search Service backed by PostgreSQL full-text search.
// It stands in for a dedicated index; its staleness window is whatever the
// catalog tables hold at query time.
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

var sortColumns = map[string]string{
	"stars":                       "stars",
	"name":                        "name",
	"latest_release_published_at": "latest_release_published_at",
	"created_at":                  "created_at",
}

// Search runs the bounded query against the projects table
func (s *PostgresService) Search(ctx context.Context, req Request) (*Page, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}

	if req.Query != "" {
		args = append(args, req.Query)
		conditions = append(conditions,
			fmt.Sprintf("to_tsvector('simple', name || ' ' || coalesce(description, '')) @@ plainto_tsquery('simple', $%d)", len(args)))
	}
	if platform := req.Filters["platforms"]; platform != "" {
		args = append(args, platform)
		conditions = append(conditions, fmt.Sprintf("platform = $%d", len(args)))
	}
	if language := req.Filters["languages"]; language != "" {
		args = append(args, language)
		conditions = append(conditions, fmt.Sprintf("language = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM projects WHERE ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	orderBy := "stars"
	if col, ok := sortColumns[req.Sort]; ok {
		orderBy = col
	}
	direction := "DESC"
	if strings.EqualFold(req.Order, "asc") {
		direction = "ASC"
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`
		SELECT id, name, platform, stars
		FROM projects
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, where, orderBy, direction, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run search query: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0, req.PerPage)
	for rows.Next() {
		var r Result
		var stars int
		if err := rows.Scan(&r.ID, &r.Name, &r.Platform, &stars); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		r.Entity = req.Entity
		r.Score = float64(stars)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}

	return &Page{
		Results:    results,
		TotalCount: total,
		Page:       req.Page,
		PerPage:    req.PerPage,
	}, nil
}
