// Package query implements the client-side query engine: filtering,
// stable sorting and pagination over an expense collection.
//
// Run is a pure function of its inputs. The same engine backs the
// in-memory record store and the mock backend API, so local and remote
// pages share one definition of ordering and pagination.
package query

import (
	"slices"

	"github.com/boddenberg/expense-feed-go/internal/domain"
)

// Run filters, sorts and paginates records according to criteria.
//
// Filters apply in a fixed order: category equality, then the inclusive
// date range. Sorting is stable; equal keys keep their order in records.
// An out-of-range page yields empty content with Last set. The records
// slice is never modified.
func Run(records []domain.Expense, criteria domain.Criteria) (domain.Page[domain.Expense], error) {
	if err := criteria.Validate(); err != nil {
		return domain.Page[domain.Expense]{}, err
	}

	filtered := Filter(records, criteria)
	SortExpenses(filtered, criteria.Sort)
	return Paginate(filtered, criteria.Page, criteria.EffectiveSize()), nil
}

// Filter returns a new slice holding the records that match the category
// and date-range filters of criteria. Unset filters match everything.
func Filter(records []domain.Expense, criteria domain.Criteria) []domain.Expense {
	out := make([]domain.Expense, 0, len(records))
	for _, e := range records {
		if criteria.CategoryID != "" && e.CategoryID != criteria.CategoryID {
			continue
		}
		out = append(out, e)
	}

	if criteria.StartDate == nil && criteria.EndDate == nil {
		return out
	}
	inRange := out[:0]
	for _, e := range out {
		if criteria.StartDate != nil && e.Date.Before(*criteria.StartDate) {
			continue
		}
		if criteria.EndDate != nil && e.Date.After(*criteria.EndDate) {
			continue
		}
		inRange = append(inRange, e)
	}
	return inRange
}

// Paginate selects the zero-based page of the given size.
// TotalElements and TotalPages describe all of items.
func Paginate[T any](items []T, page, size int) domain.Page[T] {
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	total := len(items)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	p := domain.Page[T]{
		Content:       []T{},
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
		Last:          true,
	}

	// page < totalPages keeps page*size below total.
	if page < 0 || page >= totalPages {
		return p
	}
	start := page * size
	end := min(start+size, total)
	p.Content = slices.Clone(items[start:end])
	p.Last = end >= total
	return p
}
