// Package memory provides an in-process RecordStore. It backs the mock
// backend API and the CLI when mock data is enabled.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/query"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("memory")

// Store holds expenses and categories in insertion order. Insertion order
// is the source order the query engine falls back to for ties.
type Store struct {
	mu         sync.RWMutex
	expenses   []domain.Expense
	categories []domain.Category

	now     func() time.Time
	newID   func() string
	latency time.Duration
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for CreatedAt/LastModifiedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id assigned on create.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLatency delays every call, like a slow backend would.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// New returns an empty store.
func New(logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wait simulates backend latency. It returns early when ctx is done.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ============================================================
// Expenses
// ============================================================

// FetchPage runs criteria against a snapshot of the stored expenses.
func (s *Store) FetchPage(ctx context.Context, criteria domain.Criteria) (domain.Page[domain.Expense], error) {
	ctx, span := tracer.Start(ctx, "Memory.FetchPage")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", criteria.Page),
		attribute.Int("size", criteria.EffectiveSize()),
		attribute.String("sort", criteria.Sort.String()),
	)

	if err := s.wait(ctx); err != nil {
		return domain.Page[domain.Expense]{}, err
	}

	s.mu.RLock()
	page, err := query.Run(s.expenses, criteria)
	s.mu.RUnlock()
	if err != nil {
		return page, err
	}

	s.logger.Debug("memory: page served",
		zap.Int("page", page.Number),
		zap.Int("items", len(page.Content)),
		zap.Int("total", page.TotalElements),
	)
	return page, nil
}

// UpsertExpense creates e when its ID is empty, otherwise fully replaces
// the stored record keeping ID and CreatedAt.
func (s *Store) UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Memory.UpsertExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", e.ID))

	if err := s.wait(ctx); err != nil {
		return domain.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e.ID == "" {
		e.ID = s.newID()
		e.CreatedAt = now
		e.LastModifiedAt = now
		s.expenses = append(s.expenses, e)
		return e, nil
	}

	i := slices.IndexFunc(s.expenses, func(x domain.Expense) bool { return x.ID == e.ID })
	if i < 0 {
		return domain.Expense{}, &domain.ErrNotFound{Resource: "expense", ID: e.ID}
	}
	e.CreatedAt = s.expenses[i].CreatedAt
	e.LastModifiedAt = now
	s.expenses[i] = e
	return e, nil
}

// DeleteExpense removes the expense with id.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Memory.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.expenses, func(x domain.Expense) bool { return x.ID == id })
	if i < 0 {
		return &domain.ErrNotFound{Resource: "expense", ID: id}
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	return nil
}

// ============================================================
// Categories
// ============================================================

// FetchCategories returns every category ordered by sort.
func (s *Store) FetchCategories(ctx context.Context, sort string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Memory.FetchCategories")
	defer span.End()
	span.SetAttributes(attribute.String("sort", sort))

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := slices.Clone(s.categories)
	s.mu.RUnlock()
	if out == nil {
		out = []domain.Category{}
	}

	query.SortCategories(out, domain.ParseSort(sort))
	return out, nil
}

// UpsertCategory mirrors UpsertExpense for categories.
func (s *Store) UpsertCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Memory.UpsertCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", c.ID))

	if err := s.wait(ctx); err != nil {
		return domain.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if c.ID == "" {
		c.ID = s.newID()
		c.CreatedAt = now
		c.LastModifiedAt = now
		s.categories = append(s.categories, c)
		return c, nil
	}

	i := slices.IndexFunc(s.categories, func(x domain.Category) bool { return x.ID == c.ID })
	if i < 0 {
		return domain.Category{}, &domain.ErrNotFound{Resource: "category", ID: c.ID}
	}
	c.CreatedAt = s.categories[i].CreatedAt
	c.LastModifiedAt = now
	s.categories[i] = c
	return c, nil
}

// DeleteCategory removes the category with id. Expenses that reference it
// are kept; they resolve to "Unknown" afterwards.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Memory.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.categories, func(x domain.Category) bool { return x.ID == id })
	if i < 0 {
		return &domain.ErrNotFound{Resource: "category", ID: id}
	}
	s.categories = slices.Delete(s.categories, i, i+1)
	return nil
}
