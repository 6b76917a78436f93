package controllers

import (
	"net/http"

	"github.com/rosamendez/emberglow-backend/api/responses"
	"github.com/rosamendez/emberglow-backend/internal/catalog"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

// Storefront display sections, each scoped to one product category.
var sectionCategories = []string{"candles", "jewelry", "custom"}

// CatalogList returns the merged catalog, optionally filtered by category.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// CatalogSections renders the per-category display sections consumed by the
// storefront's listing pages.
func CatalogSections(renderer *catalog.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		containers := make([]*catalog.Container, 0, len(sectionCategories))
		for _, category := range sectionCategories {
			containers = append(containers, &catalog.Container{Name: category, Category: category})
		}

		if err := renderer.Render(r.Context(), containers); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, containers)
	}
}
