// Command expenses browses and edits the expense feed from a terminal.
//
//	expenses list   [-month 2025-11] [-category 1] [-sort date,desc] [-search bus] [-pages 0] [-group day|category]
//	expenses add    -amount 12.50 -description "Bus ticket" -category 2 [-date 2025-11-08]
//	expenses delete -id 42
//
// Backend settings come from the environment (see internal/config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/aggregate"
	"github.com/boddenberg/expense-feed-go/internal/config"
	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/infra/cache"
	"github.com/boddenberg/expense-feed-go/internal/infra/client"
	"github.com/boddenberg/expense-feed-go/internal/infra/memory"
	"github.com/boddenberg/expense-feed-go/internal/infra/observability"
	"github.com/boddenberg/expense-feed-go/internal/infra/resilience"
	"github.com/boddenberg/expense-feed-go/internal/port"
	"github.com/boddenberg/expense-feed-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "expenses-cli")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	app := newApp(cfg, logger)
	defer app.close()

	switch os.Args[1] {
	case "list":
		err = app.list(ctx, os.Args[2:], os.Stdout)
	case "add":
		err = app.add(ctx, os.Args[2:], os.Stdout)
	case "delete":
		err = app.delete(ctx, os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: expenses <list|add|delete> [flags]")
}

type app struct {
	cfg     *config.Config
	store   port.RecordStore
	cache   *cache.InMemory[[]domain.Category]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// newApp selects the record store: the seeded in-memory store when
// USE_MOCK_DATA is set, the backend API otherwise.
func newApp(cfg *config.Config, logger *zap.Logger) *app {
	a := &app{
		cfg:     cfg,
		cache:   cache.New[[]domain.Category](cfg.CacheTTL),
		metrics: observability.NewMetrics(),
		logger:  logger,
	}

	if cfg.UseMockData {
		logger.Info("using in-memory mock data", zap.Duration("latency", cfg.MockLatency))
		a.store = memory.NewSeeded(logger, memory.WithLatency(cfg.MockLatency))
		return a
	}

	logger.Info("using expense backend", zap.String("url", cfg.BackendURL))
	a.store = client.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.BackendURL,
		client.StaticToken(cfg.BackendToken),
		resilience.NewCircuitBreaker("expense-backend", logger),
		resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		},
		logger,
	)
	return a
}

func (a *app) close() {
	a.cache.Close()
}

func (a *app) lookup() *service.CategoryLookup {
	return service.NewCategoryLookup(a.store, a.cache, a.metrics, a.logger)
}

func (a *app) list(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	month := fs.String("month", domain.MonthOf(time.Now()).String(), "month to show (YYYY-MM)")
	category := fs.String("category", "", "category id filter")
	sort := fs.String("sort", a.cfg.DefaultSort, "sort as field,direction")
	search := fs.String("search", "", "description filter applied to loaded items")
	pages := fs.Int("pages", 0, "pages to load; 0 loads until exhausted")
	group := fs.String("group", "day", "group rows by day or category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := domain.ParseMonth(*month)
	if err != nil {
		return err
	}

	feed := service.NewExpenseFeed(a.store, service.FeedOptions{
		PageSize: a.cfg.PageSize,
		Sort:     domain.ParseSort(*sort),
		Month:    m,
	}, a.metrics, a.logger)
	lookup := a.lookup()
	view := service.NewExpenseView(feed, lookup, a.logger)

	if *category != "" {
		if err := feed.SetFilter(ctx, service.FilterDelta{CategoryID: category}); err != nil {
			return err
		}
		if _, err := lookup.Load(ctx); err != nil {
			a.logger.Warn("categories unavailable", zap.Error(err))
		}
	} else if err := view.Activate(ctx); err != nil {
		if feed.State().Phase == service.PhaseFailed {
			return err
		}
	}

	for loaded := 1; *pages == 0 || loaded < *pages; loaded++ {
		more, err := feed.LoadNext(ctx)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	feed.SetSearch(*search)

	var key aggregate.KeyFunc
	if *group == "category" {
		key = func(e domain.Expense) string { return lookup.Resolve(e.CategoryID) }
	}

	return printRows(out, m, view.Rows(key), feed.Total())
}

func printRows(out io.Writer, m domain.Month, groups []service.RowGroup, total decimal.Decimal) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n\n", m)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t\t%s\n", g.Key, g.Total.StringFixed(2))
		for _, r := range g.Rows {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Expense.Description, r.CategoryName, r.Expense.Amount.StringFixed(2))
		}
	}
	fmt.Fprintf(tw, "\nTotal\t\t%s\n", total.StringFixed(2))
	return tw.Flush()
}

func (a *app) add(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	id := fs.String("id", "", "expense id to replace; empty creates")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	description := fs.String("description", "", "description")
	category := fs.String("category", "", "category id")
	date := fs.String("date", time.Now().Format(time.DateOnly), "date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		return &domain.ErrValidation{Field: "amount", Message: "must be a decimal number"}
	}
	d, err := domain.ParseDate(*date)
	if err != nil {
		return &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	svc := service.NewExpenses(a.store, a.store, a.lookup(), a.metrics, a.logger)
	saved, err := svc.SaveExpense(ctx, domain.Expense{
		ID:          *id,
		Amount:      amt,
		Description: *description,
		CategoryID:  *category,
		Date:        d,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "saved %s\n", saved.ID)
	return err
}

func (a *app) delete(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "expense id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc := service.NewExpenses(a.store, a.store, a.lookup(), a.metrics, a.logger)
	err := svc.DeleteExpense(ctx, *id)
	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("no expense with id %q", *id)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "deleted %s\n", *id)
	return err
}
