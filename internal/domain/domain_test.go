package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/domain"

	"github.com/shopspring/decimal"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want domain.SortSpec
		str  string
	}{
		{"date,desc", domain.SortSpec{Field: domain.SortByDate, Direction: domain.SortDesc}, "date,desc"},
		{"amount,asc", domain.SortSpec{Field: domain.SortByAmount, Direction: domain.SortAsc}, "amount,asc"},
		{"amount", domain.SortSpec{Field: domain.SortByAmount, Direction: domain.SortAsc}, "amount,asc"},
		{"date,sideways", domain.SortSpec{Field: domain.SortByDate, Direction: domain.SortAsc}, "date,asc"},
		{" date , DESC ", domain.SortSpec{Field: domain.SortByDate, Direction: domain.SortDesc}, "date,desc"},
		{"", domain.SortSpec{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := domain.ParseSort(tt.in)
			if got != tt.want {
				t.Errorf("ParseSort(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}
}

func TestCriteria_Validate(t *testing.T) {
	if err := (domain.Criteria{Page: 0, Size: 5}).Validate(); err != nil {
		t.Fatalf("expected valid criteria, got %v", err)
	}

	var verr *domain.ErrValidation
	if err := (domain.Criteria{Page: -1}).Validate(); !errors.As(err, &verr) || verr.Field != "page" {
		t.Errorf("expected page validation error, got %v", err)
	}
	if err := (domain.Criteria{Size: -3}).Validate(); !errors.As(err, &verr) || verr.Field != "size" {
		t.Errorf("expected size validation error, got %v", err)
	}
}

func TestCriteria_ValuesRoundTrip(t *testing.T) {
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 30, 23, 59, 59, 0, time.UTC)
	c := domain.Criteria{
		Page:       2,
		Size:       20,
		Sort:       domain.ParseSort("date,desc"),
		CategoryID: "3",
	}.WithWindow(start, end)

	v := c.Values()
	if v.Get("sort") != "date,desc" || v.Get("categoryId") != "3" || v.Get("page") != "2" {
		t.Fatalf("unexpected values: %v", v)
	}

	back, err := domain.CriteriaFromValues(v)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if back.Page != 2 || back.Size != 20 || back.Sort != c.Sort || back.CategoryID != "3" {
		t.Errorf("unexpected criteria: %+v", back)
	}
	if !back.StartDate.Equal(start) || !back.EndDate.Equal(end) {
		t.Errorf("unexpected window: %v - %v", back.StartDate, back.EndDate)
	}
}

func TestCriteria_ValuesOmitsUnsetFilters(t *testing.T) {
	v := domain.Criteria{}.Values()
	if v.Get("size") != "10" {
		t.Errorf("expected default size 10, got %q", v.Get("size"))
	}
	for _, k := range []string{"sort", "categoryId", "startDate", "endDate"} {
		if v.Has(k) {
			t.Errorf("expected %s to be omitted", k)
		}
	}
}

func TestCriteriaFromValues_Malformed(t *testing.T) {
	c := domain.Criteria{}.Values()
	c.Set("startDate", "yesterday")
	if _, err := domain.CriteriaFromValues(c); err == nil {
		t.Fatal("expected error for malformed date")
	}

	c = domain.Criteria{}.Values()
	c.Set("page", "-4")
	var verr *domain.ErrValidation
	if _, err := domain.CriteriaFromValues(c); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMonth_Window(t *testing.T) {
	start, end := domain.Month{Year: 2024, Month: time.February}.Window()

	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("unexpected end %v", end)
	}
}

func TestMonth_WindowIgnoresCallerZone(t *testing.T) {
	newYork := time.FixedZone("EST", -5*60*60)
	m := domain.MonthOf(time.Date(2025, 11, 15, 12, 0, 0, 0, newYork))

	start, end := m.Window()
	if !start.Equal(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2025, 11, 30, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("unexpected end %v", end)
	}

	first, _ := domain.ParseDate("2025-11-01")
	next, _ := domain.ParseDate("2025-12-01")
	if first.Before(start) || next.Before(end) || next.Equal(end) {
		t.Errorf("expected [%v, %v] to contain Nov 1 and exclude Dec 1", start, end)
	}
}

func TestMonthOf_UsesCallerCalendar(t *testing.T) {
	// 2025-12-01 03:00Z is still November 30 in New York.
	newYork := time.FixedZone("EST", -5*60*60)
	m := domain.MonthOf(time.Date(2025, 12, 1, 3, 0, 0, 0, time.UTC).In(newYork))
	if m.String() != "2025-11" {
		t.Errorf("expected 2025-11, got %s", m)
	}
}

func TestMonth_Navigation(t *testing.T) {
	dec := domain.Month{Year: 2025, Month: time.December}
	if got := dec.Next().String(); got != "2026-01" {
		t.Errorf("expected 2026-01, got %s", got)
	}
	if got := dec.Next().Prev(); !got.Equal(dec) {
		t.Errorf("expected %s, got %s", dec, got)
	}

	m, err := domain.ParseMonth("2025-11")
	if err != nil || m.Year != 2025 || m.Month != time.November {
		t.Fatalf("unexpected month %v (err=%v)", m, err)
	}
	if _, err := domain.ParseMonth("11/2025"); err == nil {
		t.Fatal("expected error for malformed month")
	}
}

func TestExpense_Validate(t *testing.T) {
	good := domain.Expense{
		Amount:      decimal.RequireFromString("12.00"),
		Description: "Bus ticket",
		CategoryID:  "2",
		Date:        time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := map[string]func(e *domain.Expense){
		"amount":      func(e *domain.Expense) { e.Amount = decimal.Zero },
		"tiny amount": func(e *domain.Expense) { e.Amount = decimal.RequireFromString("0.001") },
		"description": func(e *domain.Expense) { e.Description = "   " },
		"long":        func(e *domain.Expense) { e.Description = strings.Repeat("x", 201) },
		"category":    func(e *domain.Expense) { e.CategoryID = "" },
		"date":        func(e *domain.Expense) { e.Date = time.Time{} },
	}
	for name, mutate := range bads {
		e := good
		mutate(&e)
		if err := e.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestExpense_JSON(t *testing.T) {
	e := domain.Expense{
		ID:          "1",
		Amount:      decimal.RequireFromString("45.50"),
		Description: "Weekly groceries",
		CategoryID:  "1",
		Date:        time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)
	if !strings.Contains(got, `"amount":45.5`) || !strings.Contains(got, `"date":"2025-11-08"`) {
		t.Errorf("unexpected wire form %s", got)
	}
	if strings.Contains(got, "createdAt") {
		t.Errorf("expected zero timestamps to be omitted: %s", got)
	}
}

func TestExpense_JSONDecodeVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"number and date", `{"id":"7","amount":12.30,"description":"Taxi","categoryId":"2","date":"2025-11-08"}`},
		{"string and timestamp", `{"id":"7","amount":"12.3","description":"Taxi","categoryId":"2","date":"2025-11-08T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e domain.Expense
			if err := json.Unmarshal([]byte(tt.in), &e); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !e.Amount.Equal(decimal.RequireFromString("12.3")) {
				t.Errorf("unexpected amount %s", e.Amount)
			}
			if !e.Date.Equal(time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("unexpected date %v", e.Date)
			}
		})
	}

	var e domain.Expense
	if err := json.Unmarshal([]byte(`{"amount":1,"date":"08.11.2025"}`), &e); err == nil {
		t.Error("expected error for malformed date")
	}
}
