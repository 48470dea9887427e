package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"benefind/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID and a stable request-scoped "now".
// The ID is taken from the X-Request-ID header when the caller supplies one,
// otherwise generated, and is echoed back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID set by RequestID, or "" if absent.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
