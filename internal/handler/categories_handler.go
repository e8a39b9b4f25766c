package handler

import (
	"net/http"
	"strings"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/infra/observability"
	"github.com/boddenberg/expense-feed-go/internal/port"
	"github.com/boddenberg/expense-feed-go/internal/query"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Categories
// GET /categories?page&size&sort   (paged)
// GET /v2/categories?sort&name     (all, optional name filter)
// PUT /categories
// DELETE /categories/{id}
// ============================================================

func listCategoryPageHandler(store port.CategorySource, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /categories")
		defer span.End()

		page, size, err := parsePaging(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		categories, err := store.FetchCategories(ctx, r.URL.Query().Get("sort"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, query.Paginate(categories, page, size))
	}
}

func listAllCategoriesHandler(store port.CategorySource, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v2/categories")
		defer span.End()

		name := strings.TrimSpace(r.URL.Query().Get("name"))
		span.SetAttributes(attribute.String("name", name))

		categories, err := store.FetchCategories(ctx, r.URL.Query().Get("sort"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if name != "" {
			needle := strings.ToLower(name)
			filtered := make([]domain.Category, 0, len(categories))
			for _, c := range categories {
				if strings.Contains(strings.ToLower(c.Name), needle) {
					filtered = append(filtered, c)
				}
			}
			categories = filtered
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

func upsertCategoryHandler(store port.CategoryWriter, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /categories")
		defer span.End()

		var c domain.Category
		if err := decodeJSON(r, &c); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := c.Validate(); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		op := "update"
		if c.ID == "" {
			op = "create"
		}
		saved, err := store.UpsertCategory(ctx, c)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrMutation("category", op)

		logger.Info("category saved", zap.String("op", op), zap.String("category_id", saved.ID))
		writeJSON(w, http.StatusOK, saved)
	}
}

func deleteCategoryHandler(store port.CategoryWriter, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /categories/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if err := store.DeleteCategory(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrMutation("category", "delete")
		w.WriteHeader(http.StatusNoContent)
	}
}
