package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/internal/content"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

// ContentFetch returns the editable text blocks for a page.
func ContentFetch(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocks, err := svc.Get(r.Context(), chi.URLParam(r, "page"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, blocks)
	}
}
