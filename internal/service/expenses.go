package service

import (
	"context"
	"strings"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/infra/observability"
	"github.com/boddenberg/expense-feed-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Expenses validates and applies mutations. It never refreshes a feed;
// callers reset it afterwards.
type Expenses struct {
	expenses   port.ExpenseWriter
	categories port.CategoryWriter
	lookup     *CategoryLookup
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewExpenses creates the mutation service. lookup may be nil; when set it
// is invalidated after every category change.
func NewExpenses(expenses port.ExpenseWriter, categories port.CategoryWriter, lookup *CategoryLookup, metrics *observability.Metrics, logger *zap.Logger) *Expenses {
	return &Expenses{
		expenses:   expenses,
		categories: categories,
		lookup:     lookup,
		metrics:    metrics,
		logger:     logger,
	}
}

func upsertOp(id string) string {
	if id == "" {
		return "create"
	}
	return "update"
}

// SaveExpense creates e when its ID is empty and replaces it otherwise.
func (s *Expenses) SaveExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Expenses.SaveExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", e.ID))

	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return domain.Expense{}, err
	}

	op := upsertOp(e.ID)
	saved, err := s.expenses.UpsertExpense(ctx, e)
	if err != nil {
		s.logger.Warn("expense save failed", zap.String("op", op), zap.String("expense_id", e.ID), zap.Error(err))
		return domain.Expense{}, err
	}
	s.metrics.IncrMutation("expense", op)
	s.logger.Info("expense saved", zap.String("op", op), zap.String("expense_id", saved.ID))
	return saved, nil
}

// DeleteExpense removes the expense with id.
func (s *Expenses) DeleteExpense(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Expenses.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	if strings.TrimSpace(id) == "" {
		return &domain.ErrValidation{Field: "id", Message: "required"}
	}
	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		s.logger.Warn("expense delete failed", zap.String("expense_id", id), zap.Error(err))
		return err
	}
	s.metrics.IncrMutation("expense", "delete")
	s.logger.Info("expense deleted", zap.String("expense_id", id))
	return nil
}

// SaveCategory creates or renames a category.
func (s *Expenses) SaveCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Expenses.SaveCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", c.ID))

	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return domain.Category{}, err
	}

	op := upsertOp(c.ID)
	saved, err := s.categories.UpsertCategory(ctx, c)
	if err != nil {
		s.logger.Warn("category save failed", zap.String("op", op), zap.String("category_id", c.ID), zap.Error(err))
		return domain.Category{}, err
	}
	s.metrics.IncrMutation("category", op)
	if s.lookup != nil {
		s.lookup.Invalidate()
	}
	return saved, nil
}

// DeleteCategory removes the category with id. Expenses that used it
// resolve to UnknownCategory after the next lookup load.
func (s *Expenses) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Expenses.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	if strings.TrimSpace(id) == "" {
		return &domain.ErrValidation{Field: "id", Message: "required"}
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		s.logger.Warn("category delete failed", zap.String("category_id", id), zap.Error(err))
		return err
	}
	s.metrics.IncrMutation("category", "delete")
	if s.lookup != nil {
		s.lookup.Invalidate()
	}
	return nil
}
