// Package handler serves a RecordStore over HTTP with the expense
// backend's wire contract. It is the mock backend the feed client talks
// to in development and integration tests.
package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/infra/observability"
	"github.com/boddenberg/expense-feed-go/internal/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// RouterConfig holds the optional knobs of the mock API.
type RouterConfig struct {
	// BearerToken, when set, is required on every API route.
	BearerToken string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(store port.RecordStore, cfg RouterConfig, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Group(func(r chi.Router) {
		r.Use(BearerTokenMiddleware(cfg.BearerToken, logger))

		r.Get("/expenses", listExpensesHandler(store, logger))
		r.Put("/expenses", upsertExpenseHandler(store, metrics, logger))
		r.Delete("/expenses/{id}", deleteExpenseHandler(store, metrics, logger))

		r.Get("/categories", listCategoryPageHandler(store, logger))
		r.Put("/categories", upsertCategoryHandler(store, metrics, logger))
		r.Delete("/categories/{id}", deleteCategoryHandler(store, metrics, logger))

		r.Get("/v2/categories", listAllCategoriesHandler(store, logger))
	})

	return r
}

type healthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// healthzHandler probes the store with a one-item page query.
func healthzHandler(store port.ExpenseSource, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Store: "healthy", LastChecked: time.Now().Format(time.RFC3339)}

		start := time.Now()
		_, err := store.FetchPage(r.Context(), expenseProbe)
		resp.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			logger.Warn("health check: store degraded", zap.Error(err))
			resp.Status = "degraded"
			resp.Store = "degraded"
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
