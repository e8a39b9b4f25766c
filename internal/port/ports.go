// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the feed
// controller and services from the record store behind them, whether it
// lives in memory or behind the expense backend API.
package port

import (
	"context"

	"github.com/boddenberg/expense-feed-go/internal/domain"
)

// ExpenseSource returns one page of expenses for the given criteria.
// Remote implementations are authoritative for Page.Last.
type ExpenseSource interface {
	FetchPage(ctx context.Context, criteria domain.Criteria) (domain.Page[domain.Expense], error)
}

// CategorySource lists every category, ordered by sort ("name,asc").
type CategorySource interface {
	FetchCategories(ctx context.Context, sort string) ([]domain.Category, error)
}

// ExpenseWriter creates or fully replaces an expense (create when ID is
// empty) and deletes by ID. Unknown IDs yield *domain.ErrNotFound.
type ExpenseWriter interface {
	UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// CategoryWriter mirrors ExpenseWriter for categories.
type CategoryWriter interface {
	UpsertCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// RecordStore is the full surface of a store owning expenses and categories.
type RecordStore interface {
	ExpenseSource
	CategorySource
	ExpenseWriter
	CategoryWriter
}

// TokenSource supplies the bearer token for backend calls. Token storage
// and refresh live outside this module.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
