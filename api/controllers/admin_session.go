package controllers

import (
	"net/http"

	"github.com/rosamendez/emberglow-backend/api/middleware"
	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/internal/admin"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

// AdminLogin issues a session token when the caller's address is on the
// allow-list. There are no credentials; the allow-list is the gate.
func AdminLogin(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin sessions unavailable"))
			return
		}

		session, err := svc.Login(r.Context(), middleware.RemoteIP(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
