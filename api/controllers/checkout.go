package controllers

import (
	"net/http"

	"github.com/rosamendez/emberglow-backend/api/middleware"
	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/api/validators"
	checkoutsvc "github.com/rosamendez/emberglow-backend/internal/checkout"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

type checkoutRequest struct {
	SourceToken string `json:"sourceToken" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	Note        string `json:"note" validate:"omitempty,max=500"`
}

// Checkout charges the session's cart through the payment gateway.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()), checkoutsvc.SubmitInput{
			SourceToken: req.SourceToken,
			Email:       req.Email,
			Note:        req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
