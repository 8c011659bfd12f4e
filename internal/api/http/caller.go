package http

import (
	"context"
	"net/http"
	"strings"
)

// CallerHeader carries the authenticated user id set by the upstream gateway.
const CallerHeader = "X-User-ID"

type callerKey struct{}

// RequireCaller rejects requests without a caller id and stores it in the request context.
func RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID := strings.TrimSpace(r.Header.Get(CallerHeader))
		if callerID == "" {
			writeError(w, http.StatusUnauthorized, CallerHeader+" header required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCallerID(r.Context(), callerID)))
	})
}

// WithCallerID returns a copy of ctx carrying callerID.
func WithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerKey{}, callerID)
}

// CallerID returns the caller id stored by RequireCaller, or "".
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}
