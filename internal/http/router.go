package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Logger   *logrus.Logger
	Sessions *session.Manager
	Gate     *auth.Gate

	Catalog  CatalogService
	Carts    CartService
	Checkout CheckoutService
	Users    UserService

	// Metrics and Gatherer are optional.
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer

	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// NewRouter builds the storefront HTTP surface, traced with otelhttp.
func NewRouter(cfg RouterConfig) http.Handler {
	products := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
	carts := NewCartHandler(cfg.Carts, cfg.Sessions, cfg.Logger, cfg.RequestTimeout)
	admin := NewAdminHandler(cfg.Catalog, cfg.RequestTimeout, cfg.MaxUploadBytes)
	accounts := NewAuthHandler(cfg.Users, cfg.Sessions, cfg.Logger, cfg.RequestTimeout)
	checkouts := NewCheckoutHandler(cfg.Checkout, cfg.Carts, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(withLogger(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: cfg.Logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions, cfg.Logger))

		r.Get("/success", checkouts.Success)
		r.Get("/cancel", checkouts.Cancel)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/products", products.ListProducts)
			r.Get("/products/{id}/image", products.GetImage)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Post("/items/{product_id}", carts.AddItem)
				r.Delete("/items/{product_id}", carts.RemoveItem)
			})

			r.Post("/signup", accounts.Signup)
			r.Post("/login", accounts.Login)
			r.Post("/logout", accounts.Logout)

			r.Post("/checkout", checkouts.InitiateCheckout)

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin(cfg.Gate))
				r.Get("/products", admin.ListProducts)
				r.Post("/products", admin.CreateProduct)
				r.Put("/products/{id}", admin.UpdateProduct)
				r.Delete("/products/{id}", admin.DeleteProduct)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
