package service

import (
	"context"
	"slices"
	"sync"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/infra/observability"
	"github.com/boddenberg/expense-feed-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// UnknownCategory is shown for category ids that do not resolve.
const UnknownCategory = "Unknown"

const categoriesCacheKey = "categories:name,asc"

// CategoryLookup resolves category ids to names. The category list is
// cached and concurrent loads share one fetch.
type CategoryLookup struct {
	source  port.CategorySource
	cache   port.Cache[[]domain.Category]
	group   singleflight.Group
	metrics *observability.Metrics
	logger  *zap.Logger

	mu         sync.RWMutex
	categories []domain.Category
	names      map[string]string
}

// NewCategoryLookup creates an empty lookup. Call Load before Resolve.
func NewCategoryLookup(source port.CategorySource, cache port.Cache[[]domain.Category], metrics *observability.Metrics, logger *zap.Logger) *CategoryLookup {
	return &CategoryLookup{
		source:  source,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		names:   map[string]string{},
	}
}

// Load fetches the categories ordered by name, or takes them from cache.
// On failure the previously loaded set stays in place.
func (l *CategoryLookup) Load(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryLookup.Load")
	defer span.End()

	if cached, ok := l.cache.Get(categoriesCacheKey); ok {
		l.metrics.IncrCacheHit("categories")
		l.index(cached)
		return slices.Clone(cached), nil
	}
	l.metrics.IncrCacheMiss("categories")

	v, err, shared := l.group.Do(categoriesCacheKey, func() (any, error) {
		categories, err := l.source.FetchCategories(ctx, "name,asc")
		if err != nil {
			return nil, err
		}
		l.cache.Set(categoriesCacheKey, categories)
		return categories, nil
	})
	if err != nil {
		l.metrics.IncrFetchError("categories")
		l.logger.Warn("categories: load failed", zap.Error(err))
		return nil, err
	}

	categories := v.([]domain.Category)
	l.index(categories)

	l.logger.Debug("categories: loaded",
		zap.Int("count", len(categories)),
		zap.Bool("shared", shared),
	)
	return slices.Clone(categories), nil
}

func (l *CategoryLookup) index(categories []domain.Category) {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	l.mu.Lock()
	l.categories = slices.Clone(categories)
	l.names = names
	l.mu.Unlock()
}

// Resolve returns the category name for id, or UnknownCategory.
func (l *CategoryLookup) Resolve(id string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if name, ok := l.names[id]; ok {
		return name
	}
	return UnknownCategory
}

// Categories returns the last loaded list, ordered by name.
func (l *CategoryLookup) Categories() []domain.Category {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := slices.Clone(l.categories)
	if out == nil {
		out = []domain.Category{}
	}
	return out
}

// Invalidate drops the cached list so the next Load fetches again.
// Resolve keeps answering from the last loaded set until then.
func (l *CategoryLookup) Invalidate() {
	l.cache.Delete(categoriesCacheKey)
}
