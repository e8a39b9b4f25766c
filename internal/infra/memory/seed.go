package memory

import (
	"strconv"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewSeeded returns a store preloaded with the demo data set: five
// categories and five expenses in early November 2025.
func NewSeeded(logger *zap.Logger, opts ...Option) *Store {
	s := New(logger, opts...)
	now := s.now()

	for i, name := range []string{"Groceries", "Transport", "Entertainment", "Utilities", "Healthcare"} {
		s.categories = append(s.categories, domain.Category{
			ID:             seedID(i),
			Name:           name,
			CreatedAt:      now,
			LastModifiedAt: now,
		})
	}

	seed := []struct {
		amount      string
		description string
		category    int
		day         int
	}{
		{"45.50", "Weekly groceries", 0, 8},
		{"12.00", "Bus ticket", 1, 8},
		{"25.99", "Movie tickets", 2, 9},
		{"89.00", "Electricity bill", 3, 7},
		{"150.00", "Doctor visit", 4, 6},
	}
	for i, e := range seed {
		s.expenses = append(s.expenses, domain.Expense{
			ID:             seedID(i),
			Amount:         decimal.RequireFromString(e.amount),
			Description:    e.description,
			CategoryID:     seedID(e.category),
			Date:           time.Date(2025, time.November, e.day, 0, 0, 0, 0, time.UTC),
			CreatedAt:      now,
			LastModifiedAt: now,
		})
	}

	logger.Info("memory: store seeded",
		zap.Int("categories", len(s.categories)),
		zap.Int("expenses", len(s.expenses)),
	)
	return s
}

func seedID(i int) string {
	return strconv.Itoa(i + 1)
}
