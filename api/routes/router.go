package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosamendez/emberglow-backend/api/controllers"
	"github.com/rosamendez/emberglow-backend/api/middleware"
	"github.com/rosamendez/emberglow-backend/internal/admin"
	"github.com/rosamendez/emberglow-backend/internal/cart"
	"github.com/rosamendez/emberglow-backend/internal/catalog"
	checkoutsvc "github.com/rosamendez/emberglow-backend/internal/checkout"
	"github.com/rosamendez/emberglow-backend/internal/content"
	"github.com/rosamendez/emberglow-backend/pkg/config"
	"github.com/rosamendez/emberglow-backend/pkg/db"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
	"github.com/rosamendez/emberglow-backend/pkg/redis"
)

// Deps carries everything the router wires into controllers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	CartService     cart.Service
	CatalogService  catalog.Service
	Renderer        *catalog.Renderer
	ContentService  content.Service
	CheckoutService checkoutsvc.Service
	AdminSessions   admin.Service
	Poller          controllers.Syncer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogList(deps.CatalogService, logg))
			r.Get("/sections", controllers.CatalogSections(deps.Renderer, logg))
		})
		r.Get("/content/{page}", controllers.ContentFetch(deps.ContentService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Put("/items", controllers.CartUpdateQuantity(deps.CartService, logg))
			r.Delete("/items", controllers.CartRemoveItem(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
		})

		r.With(middleware.Idempotency(deps.Redis, logg)).
			Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/session", controllers.AdminLogin(deps.AdminSessions, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.AdminSessions, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Post("/products", controllers.AdminCreateProduct(deps.CatalogService, deps.Poller, logg))
			r.Put("/products/{productId}", controllers.AdminUpdateProduct(deps.CatalogService, deps.Poller, logg))
			r.Delete("/products/{productId}", controllers.AdminDeleteProduct(deps.CatalogService, deps.Poller, logg))
			r.Post("/sync", controllers.AdminTriggerSync(deps.Poller, logg))
			r.Put("/content/{page}", controllers.AdminUpdateContent(deps.ContentService, logg))
		})
	})

	return r
}
