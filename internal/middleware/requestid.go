// Package middleware holds the gazetteer HTTP server's cross-cutting
// chi middleware: request ID propagation and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// validRequestID matches alphanumeric characters, hyphens, and
// underscores, max 128 chars.
var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// RequestID assigns a unique request ID to each request. A valid
// incoming X-Request-ID header is reused; otherwise a new UUID is
// generated. Validation guards against log-forging via a crafted
// header value.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if !isValidRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isValidRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	return validRequestID.MatchString(id)
}

// RequestIDFromContext extracts the request ID from ctx, or "" if absent.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
