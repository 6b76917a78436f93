package middleware

import (
	"net/http"
	"strings"

	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/internal/admin"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

// AdminAuth guards admin routes: a valid session token and an allow-listed
// caller address are both required on every request.
func AdminAuth(sessions admin.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin sessions unavailable"))
				return
			}

			token := bearerToken(r)
			if _, err := sessions.Verify(r.Context(), token, RemoteIP(r)); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
