package handler

import (
	"net/http"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/infra/observability"
	"github.com/boddenberg/expense-feed-go/internal/port"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var expenseProbe = domain.Criteria{Size: 1}

// ============================================================
// Expenses
// GET /expenses?page&size&sort&categoryId&startDate&endDate
// PUT /expenses
// DELETE /expenses/{id}
// ============================================================

func listExpensesHandler(store port.ExpenseSource, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /expenses")
		defer span.End()

		criteria, err := domain.CriteriaFromValues(r.URL.Query())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.Int("page", criteria.Page),
			attribute.Int("size", criteria.EffectiveSize()),
			attribute.String("sort", criteria.Sort.String()),
		)

		page, err := store.FetchPage(ctx, criteria)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func upsertExpenseHandler(store port.ExpenseWriter, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /expenses")
		defer span.End()

		var e domain.Expense
		if err := decodeJSON(r, &e); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := e.Validate(); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		op := "update"
		if e.ID == "" {
			op = "create"
		}
		saved, err := store.UpsertExpense(ctx, e)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrMutation("expense", op)
		span.SetAttributes(attribute.String("expense.id", saved.ID))

		logger.Info("expense saved", zap.String("op", op), zap.String("expense_id", saved.ID))
		writeJSON(w, http.StatusOK, saved)
	}
}

func deleteExpenseHandler(store port.ExpenseWriter, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /expenses/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("expense.id", id))

		if err := store.DeleteExpense(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrMutation("expense", "delete")
		w.WriteHeader(http.StatusNoContent)
	}
}
