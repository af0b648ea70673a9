package search

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var gatewayTracer = otel.Tracer("pkgindex/search/gateway")

// MaxPerPage caps the page size forwarded to the search service. Oversized
// requests are silently reduced, not rejected.
const MaxPerPage = 300

// DefaultPerPage is applied when a request carries no page size
const DefaultPerPage = 30

// Request is a logical query against the external search service
type Request struct {
	// Entity selects the index to query, e.g. "projects" or "repositories"
	Entity string
	// Query is free text, passed through unmodified
	Query string
	// Filters are structured field restrictions, opaque to the gateway
	Filters map[string]string
	// Sort and Order are passed through to the search service as opaque
	// parameters; ranking is the collaborator's concern
	Sort  string
	Order string
	// Page and PerPage select the result window
	Page    int
	PerPage int
}

// Result is one matching entity
type Result struct {
	ID       int64                  `json:"id"`
	Entity   string                 `json:"entity"`
	Name     string                 `json:"name"`
	Platform string                 `json:"platform,omitempty"`
	Score    float64                `json:"score"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// Page is a bounded, ordered window of results plus pagination metadata
type Page struct {
	Results    []Result `json:"results"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
}

// Service is the external search collaborator. It owns ranking, indexing, and
// its own staleness window; the gateway only shapes and bounds requests.
type Service interface {
	Search(ctx context.Context, req Request) (*Page, error)
}

// Gateway bounds and forwards queries to a search Service
type Gateway struct {
	service Service
}

// NewGateway creates a search gateway over the given service
func NewGateway(service Service) *Gateway {
	return &Gateway{service: service}
}

// Query clamps the request window and forwards it. PerPage above MaxPerPage
// is reduced to the ceiling; non-positive Page clamps to 1. Identical inputs
// against an unchanged index yield identical pages.
func (g *Gateway) Query(ctx context.Context, req Request) (*Page, error) {
	ctx, span := gatewayTracer.Start(ctx, "Query",
		trace.WithAttributes(
			attribute.String("entity", req.Entity),
			attribute.String("query", req.Query),
			attribute.Int("page", req.Page),
			attribute.Int("per_page", req.PerPage),
		),
	)
	defer span.End()

	if req.PerPage <= 0 {
		req.PerPage = DefaultPerPage
	}
	if req.PerPage > MaxPerPage {
		req.PerPage = MaxPerPage
	}
	if req.Page < 1 {
		req.Page = 1
	}

	page, err := g.service.Search(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, fmt.Errorf("search failed: %w", err)
	}

	span.SetAttributes(attribute.Int("total_count", page.TotalCount))

	return page, nil
}
