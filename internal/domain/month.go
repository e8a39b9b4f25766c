package domain

import (
	"fmt"
	"time"
)

// Month is the navigation unit of the expense feed. It is a calendar
// month with no time zone, like the expense dates it selects.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month of t as seen in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM" in UTC.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, &ErrValidation{Field: "month", Message: fmt.Sprintf("invalid month %q, want YYYY-MM", s)}
	}
	return MonthOf(t), nil
}

// Window returns the inclusive range [first day 00:00:00, last day 23:59:59]
// in UTC, where expense dates live (a YYYY-MM-DD date is UTC midnight).
func (m Month) Window() (start, end time.Time) {
	start = time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end
}

// Next returns the following month.
func (m Month) Next() Month {
	start, _ := m.Window()
	return MonthOf(start.AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	start, _ := m.Window()
	return MonthOf(start.AddDate(0, -1, 0))
}

// Equal compares year and month only.
func (m Month) Equal(o Month) bool {
	return m.Year == o.Year && m.Month == o.Month
}

// String returns "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
