package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warungku-app/warungku-backend/api/controllers"
	cartcontrollers "github.com/warungku-app/warungku-backend/api/controllers/cart"
	"github.com/warungku-app/warungku-backend/api/middleware"
	cartsvc "github.com/warungku-app/warungku-backend/internal/cart"
	"github.com/warungku-app/warungku-backend/pkg/config"
	"github.com/warungku-app/warungku-backend/pkg/db"
	"github.com/warungku-app/warungku-backend/pkg/logger"
	"github.com/warungku-app/warungku-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartManager *cartsvc.Manager,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	cartPolicy := middleware.NewRateLimitPolicy(
		"cart",
		cfg.Cart.RateLimitWindow,
		cfg.Cart.RateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.RateLimit(cartPolicy, redisClient, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartManager, logg))
			r.Post("/refresh", cartcontrollers.CartRefresh(cartManager, logg))
			r.Patch("/items/{productId}", cartcontrollers.CartChangeQuantity(cartManager, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartManager, logg))
		})
	})

	return r
}
