package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/port"
)

// --- Fakes ---

// countingSource records every request and delegates to next, failing
// the calls listed in failOn (1-based).
type countingSource struct {
	next   port.ExpenseSource
	mu     sync.Mutex
	calls  []domain.Criteria
	failOn map[int]error
}

func (s *countingSource) FetchPage(ctx context.Context, c domain.Criteria) (domain.Page[domain.Expense], error) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	n := len(s.calls)
	err := s.failOn[n]
	s.mu.Unlock()

	if err != nil {
		return domain.Page[domain.Expense]{}, err
	}
	return s.next.FetchPage(ctx, c)
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *countingSource) last() domain.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type result struct {
	page domain.Page[domain.Expense]
	err  error
}

type pendingCall struct {
	criteria domain.Criteria
	reply    chan result
}

// gatedSource parks every request until the test replies to it.
type gatedSource struct {
	calls chan pendingCall
}

func newGatedSource() *gatedSource {
	return &gatedSource{calls: make(chan pendingCall)}
}

func (s *gatedSource) FetchPage(ctx context.Context, c domain.Criteria) (domain.Page[domain.Expense], error) {
	reply := make(chan result, 1)
	select {
	case s.calls <- pendingCall{criteria: c, reply: reply}:
	case <-ctx.Done():
		return domain.Page[domain.Expense]{}, ctx.Err()
	}
	r := <-reply
	return r.page, r.err
}

type mockCategorySource struct {
	mu         sync.Mutex
	categories []domain.Category
	err        error
	calls      int
	gate       chan struct{}
}

func (m *mockCategorySource) FetchCategories(_ context.Context, _ string) ([]domain.Category, error) {
	m.mu.Lock()
	m.calls++
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return m.categories, m.err
}

func (m *mockCategorySource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockWriter struct {
	upserts  int
	deletes  int
	err      error
	lastSeen domain.Expense
}

func (m *mockWriter) UpsertExpense(_ context.Context, e domain.Expense) (domain.Expense, error) {
	m.upserts++
	m.lastSeen = e
	if m.err != nil {
		return domain.Expense{}, m.err
	}
	if e.ID == "" {
		e.ID = "generated"
	}
	return e, nil
}

func (m *mockWriter) DeleteExpense(_ context.Context, id string) error {
	m.deletes++
	if m.err != nil {
		return m.err
	}
	if id == "missing" {
		return &domain.ErrNotFound{Resource: "expense", ID: id}
	}
	return nil
}

func (m *mockWriter) UpsertCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	m.upserts++
	if c.ID == "" {
		c.ID = "generated"
	}
	return c, m.err
}

func (m *mockWriter) DeleteCategory(_ context.Context, _ string) error {
	m.deletes++
	return m.err
}

var errBackend = errors.New("backend unavailable")
