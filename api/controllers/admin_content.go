package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/api/validators"
	"github.com/rosamendez/emberglow-backend/internal/content"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

type updateContentRequest struct {
	Blocks map[string]string `json:"blocks" validate:"required"`
}

// AdminUpdateContent replaces a page's editable text blocks.
func AdminUpdateContent(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateContentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := chi.URLParam(r, "page")
		if err := svc.Set(r.Context(), page, req.Blocks); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req.Blocks)
	}
}
