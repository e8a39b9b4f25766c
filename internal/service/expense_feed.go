package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/aggregate"
	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/infra/observability"
	"github.com/boddenberg/expense-feed-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/feed")

// Phase is the loading state of an ExpenseFeed.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingInitial
	PhaseLoadingMore
	PhaseLoaded
	PhaseExhausted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingInitial:
		return "loading-initial"
	case PhaseLoadingMore:
		return "loading-more"
	case PhaseLoaded:
		return "loaded"
	case PhaseExhausted:
		return "exhausted"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// State is a snapshot of the feed. Err is set only in PhaseFailed.
type State struct {
	Phase   Phase
	Items   []domain.Expense
	HasMore bool
	Err     error
}

// IsLoadingInitial reports whether a reset is in flight.
func (s State) IsLoadingInitial() bool { return s.Phase == PhaseLoadingInitial }

// IsLoadingMore reports whether a next-page load is in flight.
func (s State) IsLoadingMore() bool { return s.Phase == PhaseLoadingMore }

// FilterDelta changes the server-side filters. Nil fields are left alone;
// a pointer to "" clears the category filter.
type FilterDelta struct {
	CategoryID *string
	Sort       *domain.SortSpec
}

// FeedOptions configures a new ExpenseFeed.
type FeedOptions struct {
	PageSize int
	Sort     domain.SortSpec
	Month    domain.Month
}

// ExpenseFeed accumulates pages of expenses for one month, one category
// filter and one sort order. Every filter change starts over from page 0.
//
// Fetches run outside the lock. Each reset takes a new request token and
// a response whose token no longer matches is dropped.
type ExpenseFeed struct {
	source  port.ExpenseSource
	metrics *observability.Metrics
	logger  *zap.Logger

	mu       sync.Mutex
	criteria domain.Criteria
	month    domain.Month
	search   string
	items    []domain.Expense
	cursor   int
	hasMore  bool
	phase    Phase
	err      error
	token    uint64
	inFlight bool
}

// NewExpenseFeed creates an idle feed. Call Reset to load the first page.
func NewExpenseFeed(source port.ExpenseSource, opts FeedOptions, metrics *observability.Metrics, logger *zap.Logger) *ExpenseFeed {
	sort := opts.Sort
	if sort.IsZero() {
		sort = domain.SortSpec{Field: domain.SortByDate, Direction: domain.SortDesc}
	}
	month := opts.Month
	if month.Year == 0 {
		month = domain.MonthOf(time.Now())
	}
	return &ExpenseFeed{
		source:   source,
		metrics:  metrics,
		logger:   logger,
		criteria: domain.Criteria{Size: opts.PageSize, Sort: sort},
		month:    month,
		phase:    PhaseIdle,
	}
}

// pageCriteria returns the active criteria for page, restricted to the
// current month. Callers hold f.mu.
func (f *ExpenseFeed) pageCriteria(page int) domain.Criteria {
	start, end := f.month.Window()
	c := f.criteria.WithWindow(start, end)
	c.Page = page
	return c
}

// Reset drops the accumulated items and loads page 0. A reset is always
// allowed; any load still in flight becomes stale.
func (f *ExpenseFeed) Reset(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ExpenseFeed.Reset")
	defer span.End()

	f.mu.Lock()
	f.token++
	token := f.token
	f.phase = PhaseLoadingInitial
	f.err = nil
	f.items = nil
	f.cursor = 0
	f.hasMore = false
	f.inFlight = true
	criteria := f.pageCriteria(0)
	f.mu.Unlock()

	span.SetAttributes(
		attribute.String("month", f.Month().String()),
		attribute.String("sort", criteria.Sort.String()),
		attribute.String("category.id", criteria.CategoryID),
	)

	start := time.Now()
	page, err := f.source.FetchPage(ctx, criteria)
	f.metrics.RecordFetchDuration("expenses.reset", time.Since(start))

	f.mu.Lock()
	defer f.mu.Unlock()

	if token != f.token {
		f.discard("reset", token)
		return domain.ErrSuperseded
	}
	f.inFlight = false

	if err != nil {
		f.fail(err)
		return err
	}

	f.items = slices.Clone(page.Content)
	f.cursor = 0
	f.hasMore = !page.Last
	f.settle()
	f.metrics.IncrPageLoaded("reset")
	f.metrics.SetItemsAccumulated(len(f.items))

	f.logger.Debug("feed: reset loaded",
		zap.Int("items", len(f.items)),
		zap.Int("total", page.TotalElements),
		zap.Bool("has_more", f.hasMore),
	)
	return nil
}

// LoadNext appends the next page. It returns whether more pages remain.
//
// When nothing remains it returns (false, nil) without fetching. While
// another load is in flight it returns domain.ErrLoadInFlight without
// fetching. A failed load keeps HasMore and the cursor, so calling
// LoadNext again retries the same page.
func (f *ExpenseFeed) LoadNext(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "ExpenseFeed.LoadNext")
	defer span.End()

	f.mu.Lock()
	if f.inFlight {
		hasMore := f.hasMore
		f.mu.Unlock()
		return hasMore, domain.ErrLoadInFlight
	}
	if !f.hasMore {
		f.mu.Unlock()
		return false, nil
	}
	token := f.token
	next := f.cursor + 1
	f.phase = PhaseLoadingMore
	f.err = nil
	f.inFlight = true
	criteria := f.pageCriteria(next)
	f.mu.Unlock()

	span.SetAttributes(attribute.Int("page", next))

	start := time.Now()
	page, err := f.source.FetchPage(ctx, criteria)
	f.metrics.RecordFetchDuration("expenses.next", time.Since(start))

	f.mu.Lock()
	defer f.mu.Unlock()

	if token != f.token {
		f.discard("next", token)
		return f.hasMore, domain.ErrSuperseded
	}
	f.inFlight = false

	if err != nil {
		f.fail(err)
		return f.hasMore, err
	}

	f.items = append(f.items, page.Content...)
	f.cursor = next
	f.hasMore = !page.Last
	f.settle()
	f.metrics.IncrPageLoaded("append")
	f.metrics.SetItemsAccumulated(len(f.items))

	f.logger.Debug("feed: page appended",
		zap.Int("page", next),
		zap.Int("items", len(f.items)),
		zap.Bool("has_more", f.hasMore),
	)
	return f.hasMore, nil
}

// settle moves to Loaded or Exhausted after a successful merge.
func (f *ExpenseFeed) settle() {
	if f.hasMore {
		f.phase = PhaseLoaded
	} else {
		f.phase = PhaseExhausted
	}
}

func (f *ExpenseFeed) fail(err error) {
	f.phase = PhaseFailed
	f.err = err
	f.metrics.IncrFetchError("expenses")
	f.logger.Warn("feed: load failed", zap.Error(err))
}

func (f *ExpenseFeed) discard(mode string, token uint64) {
	f.metrics.IncrStaleResponse()
	f.logger.Info("feed: stale response discarded",
		zap.String("mode", mode),
		zap.Uint64("token", token),
		zap.Uint64("current_token", f.token),
	)
}

// SetFilter applies delta and resets the feed.
func (f *ExpenseFeed) SetFilter(ctx context.Context, delta FilterDelta) error {
	f.mu.Lock()
	if delta.CategoryID != nil {
		f.criteria.CategoryID = *delta.CategoryID
	}
	if delta.Sort != nil {
		f.criteria.Sort = *delta.Sort
	}
	f.mu.Unlock()

	return f.Reset(ctx)
}

// SetMonth switches to month and resets the feed, even when month is the
// current one.
func (f *ExpenseFeed) SetMonth(ctx context.Context, month domain.Month) error {
	f.mu.Lock()
	f.month = month
	f.mu.Unlock()

	return f.Reset(ctx)
}

// SetSearch sets the description filter used by Buckets. It never fetches.
func (f *ExpenseFeed) SetSearch(term string) {
	f.mu.Lock()
	f.search = term
	f.mu.Unlock()
}

// Search returns the current description filter.
func (f *ExpenseFeed) Search() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.search
}

// State returns a snapshot. Items is a copy.
func (f *ExpenseFeed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := slices.Clone(f.items)
	if items == nil {
		items = []domain.Expense{}
	}
	return State{Phase: f.phase, Items: items, HasMore: f.hasMore, Err: f.err}
}

// Buckets groups the accumulated items that match the search term.
// A nil key groups by day.
func (f *ExpenseFeed) Buckets(key aggregate.KeyFunc) []domain.Bucket {
	f.mu.Lock()
	items := slices.Clone(f.items)
	term := f.search
	f.mu.Unlock()

	return aggregate.Search(items, term, key)
}

// Total sums every accumulated item, ignoring the search term.
func (f *ExpenseFeed) Total() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return aggregate.Total(f.items)
}

// Criteria returns the active criteria at the last loaded page.
func (f *ExpenseFeed) Criteria() domain.Criteria {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCriteria(f.cursor)
}

// Month returns the selected month.
func (f *ExpenseFeed) Month() domain.Month {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.month
}
