package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// SessionIDFromContext returns the shopper session id set by Session.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the shopper session id, mainly for tests.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// RemoteIP extracts the caller's IP, preferring the first X-Forwarded-For
// entry set by the fronting proxy.
func RemoteIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
