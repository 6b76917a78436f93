package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rosamendez/emberglow-backend/api/middleware"
	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/api/validators"
	"github.com/rosamendez/emberglow-backend/internal/cart"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

type cartView struct {
	Items     []cart.LineItem `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type addItemRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"omitempty,min=1,max=10"`
	Size     string          `json:"size"`
	Scent    string          `json:"scent"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
	IsCustom bool            `json:"isCustom"`
}

type updateQuantityRequest struct {
	ID       string `json:"id" validate:"required"`
	Size     string `json:"size"`
	Scent    string `json:"scent"`
	Quantity int    `json:"quantity" validate:"min=0,max=10"`
}

// CartFetch returns the session's cart snapshot.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		items, err := svc.Items(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, items)
	}
}

// CartAddItem merges a line-item candidate into the session's cart.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !req.Price.IsPositive() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		items, err := svc.AddItem(r.Context(), sessionID, cart.AddInput{
			ID:       req.ID,
			Name:     req.Name,
			Price:    req.Price,
			Quantity: req.Quantity,
			Size:     req.Size,
			Scent:    req.Scent,
			Category: req.Category,
			Image:    req.Image,
			IsCustom: req.IsCustom,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, items)
	}
}

// CartUpdateQuantity sets a line item's quantity; zero removes it.
func CartUpdateQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		key := cart.KeyFor(req.ID, req.Size, req.Scent, "")
		items, err := svc.UpdateQuantity(r.Context(), sessionID, key, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, items)
	}
}

// CartRemoveItem removes the line item named by query parameters. Removing an
// absent item is a no-op.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		id := query.Get("id")
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "id query parameter is required"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		key := cart.KeyFor(id, query.Get("size"), query.Get("scent"), "")
		items, err := svc.RemoveItem(r.Context(), sessionID, key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, items)
	}
}

// CartClear empties the session's cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartView{Items: []cart.LineItem{}, Subtotal: decimal.Zero})
	}
}

func writeCartView(w http.ResponseWriter, items []cart.LineItem) {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		count += item.Quantity
	}
	responses.WriteSuccess(w, cartView{Items: items, ItemCount: count, Subtotal: subtotal})
}
