package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// Session resolves the shopper session id from the request header, minting a
// new one for first-time visitors. The id is echoed back so the storefront
// can persist it.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
