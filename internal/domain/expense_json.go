package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// expenseJSON is the backend representation of an Expense.
type expenseJSON struct {
	ID             string      `json:"id,omitempty"`
	Amount         json.Number `json:"amount"`
	Description    string      `json:"description"`
	CategoryID     string      `json:"categoryId"`
	Date           string      `json:"date"`
	CreatedAt      *time.Time  `json:"createdAt,omitempty"`
	LastModifiedAt *time.Time  `json:"lastModifiedAt,omitempty"`
}

// MarshalJSON encodes the amount as a number and the date as YYYY-MM-DD.
// Zero timestamps are omitted.
func (e Expense) MarshalJSON() ([]byte, error) {
	out := expenseJSON{
		ID:          e.ID,
		Amount:      json.Number(e.Amount.String()),
		Description: e.Description,
		CategoryID:  e.CategoryID,
	}
	if !e.Date.IsZero() {
		out.Date = e.Date.Format(time.DateOnly)
	}
	if !e.CreatedAt.IsZero() {
		out.CreatedAt = &e.CreatedAt
	}
	if !e.LastModifiedAt.IsZero() {
		out.LastModifiedAt = &e.LastModifiedAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts amounts as numbers or numeric strings and dates as
// YYYY-MM-DD or RFC 3339.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var in expenseJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	amount := decimal.Zero
	if in.Amount != "" {
		a, err := decimal.NewFromString(in.Amount.String())
		if err != nil {
			return fmt.Errorf("decode expense amount: %w", err)
		}
		amount = a
	}

	var date time.Time
	if in.Date != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			return fmt.Errorf("decode expense date: %w", err)
		}
		date = d
	}

	*e = Expense{
		ID:          in.ID,
		Amount:      amount,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Date:        date,
	}
	if in.CreatedAt != nil {
		e.CreatedAt = *in.CreatedAt
	}
	if in.LastModifiedAt != nil {
		e.LastModifiedAt = *in.LastModifiedAt
	}
	return nil
}
