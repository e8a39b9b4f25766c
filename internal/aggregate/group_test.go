package aggregate_test

import (
	"slices"
	"testing"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/aggregate"
	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/query"

	"github.com/shopspring/decimal"
)

var (
	d1 = time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	d2 = time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)
)

func threeExpenses() []domain.Expense {
	return []domain.Expense{
		{ID: "1", Amount: decimal.NewFromInt(10), Description: "Coffee beans", Date: d1},
		{ID: "2", Amount: decimal.NewFromInt(20), Description: "Bus pass", Date: d1},
		{ID: "3", Amount: decimal.NewFromInt(5), Description: "coffee", Date: d2},
	}
}

func keys(buckets []domain.Bucket) []string {
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.Key)
	}
	return out
}

func TestGroup_ByDayAfterAscendingSort(t *testing.T) {
	page, err := query.Run(threeExpenses(), domain.Criteria{Sort: domain.ParseSort("date,asc")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	buckets := aggregate.Group(page.Content, aggregate.DayKey)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Key != "November 8, 2025" || len(buckets[0].Items) != 2 || !buckets[0].Total.Equal(decimal.NewFromInt(30)) {
		t.Errorf("unexpected first bucket: key=%s count=%d total=%s", buckets[0].Key, len(buckets[0].Items), buckets[0].Total)
	}
	if buckets[1].Key != "November 9, 2025" || len(buckets[1].Items) != 1 || !buckets[1].Total.Equal(decimal.NewFromInt(5)) {
		t.Errorf("unexpected second bucket: key=%s count=%d total=%s", buckets[1].Key, len(buckets[1].Items), buckets[1].Total)
	}
}

func TestGroup_DescendingReversesBucketOrder(t *testing.T) {
	asc, _ := query.Run(threeExpenses(), domain.Criteria{Sort: domain.ParseSort("date,asc")})
	desc, _ := query.Run(threeExpenses(), domain.Criteria{Sort: domain.ParseSort("date,desc")})

	ascKeys := keys(aggregate.Group(asc.Content, aggregate.DayKey))
	descKeys := keys(aggregate.Group(desc.Content, aggregate.DayKey))
	slices.Reverse(descKeys)
	if !slices.Equal(ascKeys, descKeys) {
		t.Errorf("expected reversed bucket order, got %v and %v", ascKeys, descKeys)
	}
}

func TestGroup_ExactTotals(t *testing.T) {
	items := []domain.Expense{
		{Amount: decimal.RequireFromString("0.10"), Date: d1},
		{Amount: decimal.RequireFromString("0.20"), Date: d1},
	}
	got := aggregate.Group(items, nil)[0].Total
	if !got.Equal(decimal.RequireFromString("0.30")) {
		t.Errorf("expected 0.30, got %s", got)
	}
}

func TestGroup_EmptyInput(t *testing.T) {
	got := aggregate.Group(nil, aggregate.DayKey)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGroup_Idempotent(t *testing.T) {
	first := aggregate.Group(threeExpenses(), aggregate.DayKey)
	second := aggregate.Group(threeExpenses(), aggregate.DayKey)
	if !slices.Equal(keys(first), keys(second)) {
		t.Errorf("expected identical buckets, got %v and %v", keys(first), keys(second))
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		term  string
		count int
	}{
		{"blank term is a no-op", "", 3},
		{"whitespace term is matched as typed", "   ", 0},
		{"single space matches multi-word descriptions", " ", 2},
		{"trailing space is kept", "coffee ", 1},
		{"case insensitive", "COFFEE", 2},
		{"no match", "rent", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 0
			for _, b := range aggregate.Search(threeExpenses(), tt.term, aggregate.DayKey) {
				n += len(b.Items)
			}
			if n != tt.count {
				t.Errorf("expected %d items, got %d", tt.count, n)
			}
		})
	}
}

func TestSearch_BlankMatchesGroup(t *testing.T) {
	want := keys(aggregate.Group(threeExpenses(), aggregate.DayKey))
	got := keys(aggregate.Search(threeExpenses(), "", aggregate.DayKey))
	if !slices.Equal(want, got) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTotal(t *testing.T) {
	if got := aggregate.Total(threeExpenses()); !got.Equal(decimal.NewFromInt(35)) {
		t.Errorf("expected 35, got %s", got)
	}
	if got := aggregate.Total(nil); !got.IsZero() {
		t.Errorf("expected 0, got %s", got)
	}
}
