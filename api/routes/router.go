package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/tillbook-backend/api/controllers"
	pricingcontrollers "github.com/angelmondragon/tillbook-backend/api/controllers/pricing"
	"github.com/angelmondragon/tillbook-backend/api/middleware"
	"github.com/angelmondragon/tillbook-backend/internal/pricing"
	"github.com/angelmondragon/tillbook-backend/pkg/config"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
)

// NewRouter wires the HTTP surface. redisP may be nil when Redis is not
// configured; gatherer may be nil to leave /metrics unmounted.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	gatherer prometheus.Gatherer,
	pricingService pricing.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/pricing", func(r chi.Router) {
		r.Post("/quote", pricingcontrollers.PricingQuote(pricingService, logg))
		r.Post("/quotes", pricingcontrollers.PricingQuotes(pricingService, logg))
	})

	return r
}
