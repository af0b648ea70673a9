package api

import (
	"net/http"

	"github.com/pkgindex/pkgindex/pkg/httputil"
	"github.com/pkgindex/pkgindex/pkg/middleware"
	"github.com/pkgindex/pkgindex/pkg/observability"
	"github.com/pkgindex/pkgindex/pkg/search"
)

// SearchHandlers serves read endpoints backed by the search gateway
type SearchHandlers struct {
	gateway *search.Gateway
}

// searchProjects handles GET /api/search
//
// Query parameters: q (free text), sort, order (passed through opaquely),
// page, per_page (clamped server-side), plus structured filters.
func (h *SearchHandlers) searchProjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := make(map[string]string)
	for _, field := range []string{"platforms", "languages", "licenses", "keywords"} {
		if val := query.Get(field); val != "" {
			filters[field] = val
		}
	}

	req := search.Request{
		Entity:  "projects",
		Query:   query.Get("q"),
		Filters: filters,
		Sort:    query.Get("sort"),
		Order:   query.Get("order"),
		Page:    middleware.Page(r),
		PerPage: middleware.PerPage(r),
	}

	page, err := h.gateway.Query(r.Context(), req)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("search query failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, page)
}
