// Package aggregate derives presentation groups from an accumulated
// expense set. Everything here is a pure function of its inputs; buckets
// are recomputed on every change and never stored.
package aggregate

import (
	"strings"

	"github.com/boddenberg/expense-feed-go/internal/domain"

	"github.com/shopspring/decimal"
)

// KeyFunc derives the bucket key of an expense.
type KeyFunc func(domain.Expense) string

// DayKey groups by calendar day, formatted as "January 2, 2006".
func DayKey(e domain.Expense) string {
	return e.Date.Format("January 2, 2006")
}

// Group partitions expenses by key. Buckets appear in first-seen key
// order and items keep their input order, so a sorted input yields
// sorted buckets. Totals are exact.
func Group(expenses []domain.Expense, key KeyFunc) []domain.Bucket {
	if key == nil {
		key = DayKey
	}

	buckets := make([]domain.Bucket, 0)
	index := make(map[string]int)
	for _, e := range expenses {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, domain.Bucket{Key: k, Total: decimal.Zero})
		}
		buckets[i].Items = append(buckets[i].Items, e)
		buckets[i].Total = buckets[i].Total.Add(e.Amount)
	}
	return buckets
}

// FilterByDescription keeps expenses whose description contains term,
// ignoring case. The term is matched as typed, spaces included. An empty
// term returns expenses unchanged.
func FilterByDescription(expenses []domain.Expense, term string) []domain.Expense {
	if term == "" {
		return expenses
	}
	needle := strings.ToLower(term)

	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if strings.Contains(strings.ToLower(e.Description), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Search filters by description and groups what is left.
func Search(expenses []domain.Expense, term string, key KeyFunc) []domain.Bucket {
	return Group(FilterByDescription(expenses, term), key)
}

// Total sums the amounts of expenses.
func Total(expenses []domain.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}
