package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/pkgindex/pkgindex/pkg/contextkeys"
	"github.com/pkgindex/pkgindex/pkg/observability"
)

// RequestIDHeader carries the request correlation ID on requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation ID. An inbound
// X-Request-ID header is honored so callers can thread their own IDs through;
// otherwise one is generated. The ID is echoed on the response header, stored
// on the request context, and stamped onto the context logger so every log
// line downstream of this middleware carries it.
func RequestID(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = newRequestID()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := contextkeys.WithRequestID(r.Context(), id)
			ctx = observability.WithLogger(ctx, logger.WithField("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
