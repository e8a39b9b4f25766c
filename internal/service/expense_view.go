package service

import (
	"context"

	"github.com/boddenberg/expense-feed-go/internal/aggregate"
	"github.com/boddenberg/expense-feed-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Row is an expense with its resolved category name.
type Row struct {
	Expense      domain.Expense `json:"expense"`
	CategoryName string         `json:"categoryName"`
}

// RowGroup is a bucket ready for display.
type RowGroup struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
	Rows  []Row           `json:"rows"`
}

// ExpenseView pairs a feed with the category lookup that labels it.
type ExpenseView struct {
	feed   *ExpenseFeed
	lookup *CategoryLookup
	logger *zap.Logger
}

// NewExpenseView creates a view over feed and lookup.
func NewExpenseView(feed *ExpenseFeed, lookup *CategoryLookup, logger *zap.Logger) *ExpenseView {
	return &ExpenseView{feed: feed, lookup: lookup, logger: logger}
}

// Feed returns the underlying feed.
func (v *ExpenseView) Feed() *ExpenseFeed { return v.feed }

// Lookup returns the underlying category lookup.
func (v *ExpenseView) Lookup() *CategoryLookup { return v.lookup }

// Activate loads the categories and the first page concurrently. One
// failing does not cancel the other; the first error is returned.
func (v *ExpenseView) Activate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ExpenseView.Activate")
	defer span.End()

	var g errgroup.Group
	g.Go(func() error {
		_, err := v.lookup.Load(ctx)
		return err
	})
	g.Go(func() error {
		return v.feed.Reset(ctx)
	})

	if err := g.Wait(); err != nil {
		v.logger.Warn("view activation incomplete", zap.Error(err))
		return err
	}
	return nil
}

// Rows groups the feed's visible items and resolves their category names.
func (v *ExpenseView) Rows(key aggregate.KeyFunc) []RowGroup {
	buckets := v.feed.Buckets(key)
	out := make([]RowGroup, 0, len(buckets))
	for _, b := range buckets {
		rows := make([]Row, 0, len(b.Items))
		for _, e := range b.Items {
			rows = append(rows, Row{Expense: e, CategoryName: v.lookup.Resolve(e.CategoryID)})
		}
		out = append(out, RowGroup{Key: b.Key, Total: b.Total, Rows: rows})
	}
	return out
}
