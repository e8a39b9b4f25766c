package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength is the longest description the create form accepts.
const MaxDescriptionLength = 200

// minAmount is the smallest amount the create form accepts.
var minAmount = decimal.New(1, -2)

// ============================================================
// Categories
// ============================================================

// Category groups expenses. Name uniqueness is a convention only.
type Category struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`
}

// Validate checks the category form rules.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ErrValidation{Field: "name", Message: "required"}
	}
	return nil
}

// ============================================================
// Expenses
// ============================================================

// Expense is a single spending record. Date is the calendar date of the
// expense; CreatedAt/LastModifiedAt are maintained by the store.
//
// On the wire the amount is a JSON number and the date is YYYY-MM-DD; see
// MarshalJSON.
type Expense struct {
	ID             string
	Amount         decimal.Decimal
	Description    string
	CategoryID     string
	Date           time.Time
	CreatedAt      time.Time
	LastModifiedAt time.Time
}

// Validate checks the expense form rules.
func (e Expense) Validate() error {
	if e.Amount.LessThan(minAmount) {
		return &ErrValidation{Field: "amount", Message: "must be at least 0.01"}
	}
	if strings.TrimSpace(e.Description) == "" {
		return &ErrValidation{Field: "description", Message: "required"}
	}
	if len([]rune(e.Description)) > MaxDescriptionLength {
		return &ErrValidation{Field: "description", Message: "must be at most 200 characters"}
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return &ErrValidation{Field: "categoryId", Message: "required"}
	}
	if e.Date.IsZero() {
		return &ErrValidation{Field: "date", Message: "required"}
	}
	return nil
}

// ============================================================
// Pages & Buckets
// ============================================================

// Page is one bounded slice of a larger ordered result set.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Size          int  `json:"size"`
	Number        int  `json:"number"`
	Last          bool `json:"last"`
}

// Bucket is a group of expenses sharing a derived key with their total.
// Buckets are recomputed on every change and never persisted.
type Bucket struct {
	Key   string          `json:"key"`
	Items []Expense       `json:"items"`
	Total decimal.Decimal `json:"total"`
}
