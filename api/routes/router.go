package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketloop/marketloop-backend/api/controllers"
	"github.com/marketloop/marketloop-backend/api/middleware"
	"github.com/marketloop/marketloop-backend/internal/orders"
	"github.com/marketloop/marketloop-backend/internal/reviews"
	"github.com/marketloop/marketloop-backend/pkg/config"
	"github.com/marketloop/marketloop-backend/pkg/db"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	pkgredis "github.com/marketloop/marketloop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	ordersSvc orders.Service,
	reviewsSvc reviews.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// The gateway redirects the buyer's browser here without credentials.
	// Trust comes from verifying the session against the gateway itself.
	confirmPolicy := middleware.NewRateLimitPolicy("confirm_payment",
		cfg.Checkout.ConfirmRateWindow, cfg.Checkout.ConfirmRateLimit)
	r.With(middleware.RateLimit(confirmPolicy, rateLimiter(redisClient), logg)).
		Get("/api/v1/orders/confirm-payment", controllers.ConfirmPayment(ordersSvc, logg))

	r.Get("/api/v1/products/{productID}/reviews", controllers.ListReviews(reviewsSvc, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/myorders", controllers.MyOrders(ordersSvc, logg))
			r.Get("/cancel-payment", controllers.CancelPayment(ordersSvc, logg))

			r.With(middleware.RequireRole("seller", logg)).
				Get("/seller", controllers.SellerOrders(ordersSvc, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Get("/", controllers.ListOrders(ordersSvc, logg))

			r.Get("/{orderID}", controllers.OrderDetail(ordersSvc, logg))
			r.Post("/{orderID}/pay", controllers.InitiatePayment(ordersSvc, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Patch("/{orderID}/status", controllers.UpdateOrderStatus(ordersSvc, logg))
			r.With(middleware.RequireAnyRole(logg, "seller", "admin")).
				Patch("/{orderID}/items/{itemID}/status", controllers.UpdateItemStatus(ordersSvc, logg))
		})

		r.Post("/products/{productID}/reviews", controllers.CreateReview(reviewsSvc, logg))
	})

	return r
}

func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func rateLimiter(client *pkgredis.Client) pkgredis.RateLimiter {
	if client == nil {
		return nil
	}
	return client
}
