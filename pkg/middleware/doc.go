// Package middleware provides the per-request authorization gate for the
// pkgindex API.
//
// # Overview
//
// This package implements request processing middleware: the optional api_key
// gate with usage metering, the internal-tier check for privileged endpoints,
// the read-only-mode guard for mutating endpoints, request correlation IDs,
// and pagination clamps.
//
// # Middleware Components
//
// APIKeyGate: optional token authentication with metering
//
//	gate := middleware.NewAPIKeyGate(keyStore, meter, metrics, logger)
//	router.Handle("/api/search", gate.Handler(searchHandler))
//	// absent api_key → anonymous; present api_key → active key or 403
//
// RequireInternal: internal-tier credential check
//
//	router.Handle("/api/usage", gate.Handler(gate.RequireInternal(usageHandler)))
//
// ReadOnlyGuard: 503 on mutating endpoints while the site is read-only
//
//	guard := middleware.ReadOnlyGuard(cfg.State, metrics)
//	router.Handle("/api/hooks", gate.Handler(guard(createHandler))).Methods("POST")
//
// RequestID: request correlation, installed once at the router root
//
//	router.Use(middleware.RequestID(logger))
//
// # Error Bodies
//
// Rejections carry a stable JSON shape {"error": <message>} with fixed
// messages: 403 "you don't have permissions for this operation." and 503
// "Can't perform this action, the site is in read-only mode temporarily."
//
// # Related Packages
//
//   - pkg/auth: credential records and store
//   - pkg/metering: usage counting driven by the gate
package middleware
