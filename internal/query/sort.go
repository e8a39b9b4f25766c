package query

import (
	"slices"
	"strings"

	"github.com/boddenberg/expense-feed-go/internal/domain"
)

// expenseComparators maps each sortable field to an ascending comparator.
// Time fields compare by instant, amounts by decimal value.
var expenseComparators = map[domain.SortField]func(a, b domain.Expense) int{
	domain.SortByDate:           func(a, b domain.Expense) int { return a.Date.Compare(b.Date) },
	domain.SortByCreatedAt:      func(a, b domain.Expense) int { return a.CreatedAt.Compare(b.CreatedAt) },
	domain.SortByLastModifiedAt: func(a, b domain.Expense) int { return a.LastModifiedAt.Compare(b.LastModifiedAt) },
	domain.SortByAmount:         func(a, b domain.Expense) int { return a.Amount.Cmp(b.Amount) },
	domain.SortByDescription:    func(a, b domain.Expense) int { return strings.Compare(a.Description, b.Description) },
	domain.SortByCategory:       func(a, b domain.Expense) int { return strings.Compare(a.CategoryID, b.CategoryID) },
	domain.SortByID:             func(a, b domain.Expense) int { return strings.Compare(a.ID, b.ID) },
}

var categoryComparators = map[domain.SortField]func(a, b domain.Category) int{
	domain.SortByName:           func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) },
	domain.SortByID:             func(a, b domain.Category) int { return strings.Compare(a.ID, b.ID) },
	domain.SortByCreatedAt:      func(a, b domain.Category) int { return a.CreatedAt.Compare(b.CreatedAt) },
	domain.SortByLastModifiedAt: func(a, b domain.Category) int { return a.LastModifiedAt.Compare(b.LastModifiedAt) },
}

// SortExpenses sorts items in place by spec. A zero spec or an unknown
// field leaves items in their current order.
func SortExpenses(items []domain.Expense, spec domain.SortSpec) {
	sortStable(items, spec, expenseComparators)
}

// SortCategories sorts items in place by spec, with the same fallback
// rules as SortExpenses.
func SortCategories(items []domain.Category, spec domain.SortSpec) {
	sortStable(items, spec, categoryComparators)
}

// sortStable never reverses ties: descending order negates the
// comparator, so equal keys keep their relative order in both directions.
func sortStable[T any](items []T, spec domain.SortSpec, comparators map[domain.SortField]func(a, b T) int) {
	compare, ok := comparators[spec.Field]
	if !ok {
		return
	}
	if spec.Descending() {
		slices.SortStableFunc(items, func(a, b T) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(items, compare)
}
