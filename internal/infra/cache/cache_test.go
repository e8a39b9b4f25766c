package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/infra/cache"
	"github.com/boddenberg/expense-feed-go/internal/port"
)

var _ port.Cache[[]domain.Category] = (*cache.InMemory[[]domain.Category])(nil)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[[]domain.Category](5 * time.Minute)
	defer c.Close()

	c.Set("categories", []domain.Category{{ID: "1", Name: "Groceries"}})
	val, ok := c.Get("categories")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if len(val) != 1 || val[0].Name != "Groceries" {
		t.Errorf("unexpected value %+v", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	clk := &clock{t: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)}
	c := cache.New[string](time.Minute, cache.WithClock(clk.now), cache.WithoutSweeper())

	c.Set("key1", "value1")
	clk.t = clk.t.Add(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("expected entry to be alive before ttl")
	}

	clk.t = clk.t.Add(2 * time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
	if c.Len() != 1 {
		t.Errorf("expected expired entry to stay until swept, got len %d", c.Len())
	}
}

func TestCache_SweeperEvicts(t *testing.T) {
	c := cache.New[string](20 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	deadline := time.Now().Add(2 * time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Fatal("expected sweeper to evict the expired entry")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := cache.New[string](time.Minute)
	c.Close()
	c.Close()
}
