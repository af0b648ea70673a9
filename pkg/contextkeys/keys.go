// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// APIKeyKey contains the *auth.APIKey resolved for this request, if any.
	// Set by: middleware.APIKeyGate (pkg/middleware/gate.go), at most once per
	// request. This is the request-scoped credential cache; downstream checks
	// read it instead of hitting the key store again.
	// Type: *auth.APIKey
	APIKeyKey Key = "api_key"

	// RequestIDKey contains the request correlation ID
	// Set by: middleware.RequestID (pkg/middleware/requestid.go)
	// Used by: request-scoped loggers, error responses
	// Type: string
	RequestIDKey Key = "request_id"
)

// WithAPIKey adds the resolved API key to the context
func WithAPIKey(ctx context.Context, key interface{}) context.Context {
	return context.WithValue(ctx, APIKeyKey, key)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context, or "" if unset
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
