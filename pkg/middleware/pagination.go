package middleware

import (
	"net/http"

	"github.com/pkgindex/pkgindex/pkg/httputil"
)

const (
	// MaxPerPage is the server-side page size ceiling. Requests above it are
	// silently reduced, never rejected.
	MaxPerPage = 300

	// DefaultPerPage is used when the caller supplies no page size
	DefaultPerPage = 30
)

// PerPage reads the per_page query parameter clamped to [1, MaxPerPage]
func PerPage(r *http.Request) int {
	perPage := httputil.QueryIntDefault(r, "per_page", DefaultPerPage)
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	if perPage < 1 {
		return DefaultPerPage
	}
	return perPage
}

// Page reads the page query parameter. Non-positive values clamp to 1 so the
// search collaborator never sees them.
func Page(r *http.Request) int {
	page := httputil.QueryIntDefault(r, "page", 1)
	if page < 1 {
		return 1
	}
	return page
}
