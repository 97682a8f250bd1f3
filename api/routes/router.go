package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stockroom-backend/api/controllers"
	"github.com/angelmondragon/stockroom-backend/api/middleware"
	"github.com/angelmondragon/stockroom-backend/internal/products"
	"github.com/angelmondragon/stockroom-backend/internal/reports"
	"github.com/angelmondragon/stockroom-backend/internal/summary"
	"github.com/angelmondragon/stockroom-backend/internal/transactions"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/stockroom-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface. idemStore and cachePinger are nil
// when redis is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	cachePinger controllers.Pinger,
	idemStore pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	productService products.Service,
	transactionService transactions.Service,
	summaryService summary.Service,
	reportService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	idem := middleware.Idempotency(idemStore, cfg.Idempotency.TTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, cachePinger))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productService, logg))
		r.With(idem).Post("/", controllers.CreateProduct(productService, logg))
		r.With(idem).Put("/{productId}/master", controllers.UpdateMasterCount(productService, logg))
		r.With(idem).Post("/{productId}/restock", controllers.RestockProduct(productService, logg))
		r.With(idem).Post("/{productId}/defective", controllers.RemoveDefective(productService, logg))
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", controllers.ListTransactions(transactionService, logg))
		r.With(idem).Post("/", controllers.CreateTransaction(transactionService, logg))
		r.With(idem).Put("/{transactionId}/return", controllers.ReturnTransaction(transactionService, logg))
		r.With(idem).Delete("/{transactionId}", controllers.DeleteTransaction(transactionService, logg))
	})

	r.Route("/logs", func(r chi.Router) {
		r.Get("/monthly", controllers.MonthlySummary(summaryService, logg))
		r.Get("/download", controllers.DownloadMonthLog(reportService, logg))
		r.Get("/pdf", controllers.DownloadMonthLog(reportService, logg))
	})

	return r
}
