package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/pkgindex/pkgindex/pkg/auth"
	"github.com/pkgindex/pkgindex/pkg/contextkeys"
	"github.com/pkgindex/pkgindex/pkg/httputil"
	"github.com/pkgindex/pkgindex/pkg/observability"
)

const (
	// APIKeyParam is the query parameter carrying the access token
	APIKeyParam = "api_key"

	// ForbiddenMessage is the fixed body for credential failures
	ForbiddenMessage = "you don't have permissions for this operation."

	// ReadOnlyMessage is the fixed body for mutating calls during read-only mode
	ReadOnlyMessage = "Can't perform this action, the site is in read-only mode temporarily."
)

// UsageRecorder counts one authorized call per credential
type UsageRecorder interface {
	Record(ctx context.Context, keyID int64) error
}

// APIKeyGate authorizes inbound requests by their optional api_key parameter.
// The gate is opt-in per route, not a blanket filter: endpoints that never
// wrap themselves in it stay fully anonymous.
type APIKeyGate struct {
	keys    auth.KeyStore
	meter   UsageRecorder
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewAPIKeyGate creates the request gate. meter and metrics may be nil.
func NewAPIKeyGate(keys auth.KeyStore, meter UsageRecorder, metrics *observability.Metrics, logger *observability.Logger) *APIKeyGate {
	return &APIKeyGate{
		keys:    keys,
		meter:   meter,
		metrics: metrics,
		logger:  logger,
	}
}

// Handler wraps an HTTP handler with the api_key check.
//
// An absent parameter passes through anonymously with no usage recorded. A
// present parameter, including the empty string, must resolve to an active
// key or the request is rejected with 403 and a fixed message. On success the
// resolved key is cached in the request context (the per-request credential
// lookup happens at most once) and usage is recorded best-effort before the
// request proceeds.
func (g *APIKeyGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if !query.Has(APIKeyParam) {
			g.countDecision("anonymous")
			next.ServeHTTP(w, r)
			return
		}

		token := query.Get(APIKeyParam)
		if token == "" {
			g.forbidden(w)
			return
		}

		key, err := g.keys.FindActiveByToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrKeyNotFound) {
				g.logger.WithError(err).
					WithField("request_id", contextkeys.GetRequestID(r.Context())).
					Error("api key lookup failed")
				httputil.WriteInternalError(w, errors.New("internal error"))
				return
			}
			g.forbidden(w)
			return
		}

		g.recordUsage(r.Context(), key.ID)
		g.countDecision("authenticated")

		ctx := contextkeys.WithAPIKey(r.Context(), key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireInternal wraps privileged endpoints. It is stricter than and
// independent of the base gate: a key must be present on the request context
// and carry the internal tier, anonymous passes never qualify.
func (g *APIKeyGate) RequireInternal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := GetAPIKey(r)
		if key == nil || !key.Internal {
			g.forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *APIKeyGate) recordUsage(ctx context.Context, keyID int64) {
	if g.meter == nil {
		return
	}
	// Metering, not gating: a counting failure must not fail the request.
	if err := g.meter.Record(ctx, keyID); err != nil {
		if g.metrics != nil {
			g.metrics.UsageRecordFailuresTotal.Inc()
		}
		return
	}
	if g.metrics != nil {
		g.metrics.UsageRecordsTotal.Inc()
	}
}

func (g *APIKeyGate) forbidden(w http.ResponseWriter) {
	g.countDecision("forbidden")
	httputil.WriteForbidden(w, ForbiddenMessage)
}

func (g *APIKeyGate) countDecision(decision string) {
	if g.metrics != nil {
		g.metrics.GateDecisionsTotal.WithLabelValues(decision).Inc()
	}
}

// GetAPIKey extracts the resolved API key from the request, or nil for
// anonymous requests
func GetAPIKey(r *http.Request) *auth.APIKey {
	val := r.Context().Value(contextkeys.APIKeyKey)
	if val == nil {
		return nil
	}
	key, ok := val.(*auth.APIKey)
	if !ok {
		return nil
	}
	return key
}

// ReadOnlyChecker reports the globally mutable read-only flag, read at
// request time
type ReadOnlyChecker interface {
	ReadOnly() bool
}

// ReadOnlyGuard rejects mutating endpoints with 503 and a fixed message while
// the site is in read-only mode. The flag source is injected, not a
// process-wide singleton.
func ReadOnlyGuard(state ReadOnlyChecker, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if state.ReadOnly() {
				if metrics != nil {
					metrics.GateDecisionsTotal.WithLabelValues("read_only").Inc()
				}
				httputil.WriteServiceUnavailable(w, ReadOnlyMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
