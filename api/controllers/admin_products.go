package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/api/validators"
	"github.com/rosamendez/emberglow-backend/internal/catalog"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	ImageURL    string          `json:"imageUrl"`
	Emoji       string          `json:"emoji"`
	Featured    bool            `json:"featured"`
	InStock     bool            `json:"inStock"`
	Sizes       []string        `json:"sizes"`
	Scents      []string        `json:"scents"`
	Colors      []string        `json:"colors"`
}

// Syncer schedules a catalog sync cycle out of band.
type Syncer interface {
	Trigger()
}

// AdminCreateProduct appends a product to the catalog, local-first.
func AdminCreateProduct(svc catalog.Service, poller Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), catalog.Product{
			Name:        req.Name,
			Price:       req.Price,
			Description: req.Description,
			Category:    req.Category,
			ImageURL:    req.ImageURL,
			Emoji:       req.Emoji,
			Featured:    req.Featured,
			InStock:     req.InStock,
			Sizes:       req.Sizes,
			Scents:      req.Scents,
			Colors:      req.Colors,
			CreatedBy:   "admin",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if poller != nil {
			poller.Trigger()
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminUpdateProduct patches an existing catalog product.
func AdminUpdateProduct(svc catalog.Service, poller Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch catalog.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "productId"), patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if poller != nil {
			poller.Trigger()
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminDeleteProduct removes a catalog product.
func AdminDeleteProduct(svc catalog.Service, poller Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if poller != nil {
			poller.Trigger()
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminTriggerSync schedules an immediate reconcile against the remote
// catalog.
func AdminTriggerSync(poller Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if poller != nil {
			poller.Trigger()
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
	}
}
