// Package api assembles the pkgindex HTTP surface: search endpoints behind
// the api_key gate, webhook management behind the gate plus the read-only
// guard, and internal-only usage reporting.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pkgindex/pkgindex/pkg/auth"
	"github.com/pkgindex/pkgindex/pkg/metering"
	"github.com/pkgindex/pkgindex/pkg/middleware"
	"github.com/pkgindex/pkgindex/pkg/observability"
	"github.com/pkgindex/pkgindex/pkg/search"
	"github.com/pkgindex/pkgindex/pkg/webhooks"
)

// Server is the assembled HTTP API
type Server struct {
	router *mux.Router
}

// ServerDeps carries the collaborators the server wires together
type ServerDeps struct {
	Gate     *middleware.APIKeyGate
	State    middleware.ReadOnlyChecker
	Gateway  *search.Gateway
	Meter    *metering.Meter
	Webhooks *webhooks.Handlers
	Keys     auth.KeyStore
	Logger   *observability.Logger
	Metrics  *observability.Metrics
	Health   *observability.HealthChecker
}

// NewServer builds the router. Every /api route passes the api_key gate;
// mutating routes additionally pass the read-only guard; usage reporting and
// key management require an internal-tier key.
func NewServer(deps ServerDeps) *Server {
	router := mux.NewRouter()

	if deps.Logger != nil {
		router.Use(middleware.RequestID(deps.Logger))
	}

	if deps.Health != nil {
		router.HandleFunc("/healthz", deps.Health.Liveness).Methods("GET")
		router.HandleFunc("/readyz", deps.Health.Readiness).Methods("GET")
	}
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(deps.Gate.Handler)
	if deps.Metrics != nil {
		api.Use(deps.Metrics.HTTPMiddleware)
	}

	searchHandlers := &SearchHandlers{gateway: deps.Gateway}
	api.HandleFunc("/search", searchHandlers.searchProjects).Methods("GET")

	usageHandlers := &UsageHandlers{meter: deps.Meter}
	api.Handle("/usage/{period}", deps.Gate.RequireInternal(http.HandlerFunc(usageHandlers.periodUsage))).Methods("GET")

	mutating := middleware.ReadOnlyGuard(deps.State, deps.Metrics)
	deps.Webhooks.RegisterRoutes(api, mutating)

	if deps.Keys != nil {
		keyHandlers := &KeyHandlers{keys: deps.Keys, tokens: auth.NewTokenGenerator()}
		api.Handle("/keys", deps.Gate.RequireInternal(mutating(http.HandlerFunc(keyHandlers.createKey)))).Methods("POST")
		api.Handle("/keys/{id}", deps.Gate.RequireInternal(mutating(http.HandlerFunc(keyHandlers.revokeKey)))).Methods("DELETE")
	}

	return &Server{router: router}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
