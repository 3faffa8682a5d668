package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/storage/memory"
)

// fakeClock даёт управляемое время для проверки границ TTL.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTTLCache_SetGet(t *testing.T) {
	cache := memory.NewTTLCache("stock", 5*time.Minute)

	if err := cache.Set("stock:33101:nostore:123", "value"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok := cache.Get("stock:33101:nostore:123")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "value" {
		t.Fatalf("expected value, got %v", got)
	}
}

func TestTTLCache_EmptyKeyRejected(t *testing.T) {
	cache := memory.NewTTLCache("stock", 5*time.Minute)

	if err := cache.Set("  ", "value"); err != domain.ErrCacheKeyRequired {
		t.Fatalf("expected ErrCacheKeyRequired, got %v", err)
	}
	if _, ok := cache.Get(""); ok {
		t.Fatal("empty key must never hit")
	}
}

func TestTTLCache_DefaultTTLBoundary(t *testing.T) {
	clock := newClock()
	cache := memory.NewTTLCache("stock", 5*time.Minute, memory.WithClock(clock.Now))

	if err := cache.Set("k", 42); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// Ровно на границе запись ещё жива.
	clock.Advance(5 * time.Minute)
	if _, ok := cache.Get("k"); !ok {
		t.Fatal("entry must still be present exactly at the TTL boundary")
	}

	// Сразу за границей — логически отсутствует.
	clock.Advance(time.Nanosecond)
	if _, ok := cache.Get("k"); ok {
		t.Fatal("entry must be absent just past the TTL boundary")
	}
}

func TestTTLCache_ExplicitTTLOverridesDefault(t *testing.T) {
	clock := newClock()
	cache := memory.NewTTLCache("catalog", 6*time.Hour, memory.WithClock(clock.Now))

	if err := cache.SetWithTTL("k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	clock.Advance(time.Minute + time.Second)
	if _, ok := cache.Get("k"); ok {
		t.Fatal("entry with explicit ttl must expire before the namespace default")
	}
}

func TestTTLCache_NonPositiveTTLFallsBackToDefault(t *testing.T) {
	clock := newClock()
	cache := memory.NewTTLCache("stock", 5*time.Minute, memory.WithClock(clock.Now))

	if err := cache.SetWithTTL("k", "v", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// Запись не должна ни истечь немедленно, ни жить вечно.
	clock.Advance(4 * time.Minute)
	if _, ok := cache.Get("k"); !ok {
		t.Fatal("entry must survive within the default TTL window")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := cache.Get("k"); ok {
		t.Fatal("entry must expire at the namespace default, not never")
	}
}

func TestTTLCache_DeleteExpired(t *testing.T) {
	clock := newClock()
	cache := memory.NewTTLCache("stock", time.Minute, memory.WithClock(clock.Now))

	for _, key := range []string{"a", "b", "c"} {
		if err := cache.Set(key, key); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	clock.Advance(2 * time.Minute)
	if err := cache.Set("fresh", "v"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	removed := cache.DeleteExpired(clock.Now(), 0)
	if removed != 3 {
		t.Fatalf("expected 3 removed entries, got %d", removed)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", cache.Len())
	}
}

func TestTTLCache_DeleteExpiredHonoursLimit(t *testing.T) {
	clock := newClock()
	cache := memory.NewTTLCache("stock", time.Minute, memory.WithClock(clock.Now))

	for _, key := range []string{"a", "b", "c", "d"} {
		if err := cache.Set(key, key); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	clock.Advance(2 * time.Minute)

	removed := cache.DeleteExpired(clock.Now(), 2)
	if removed != 2 {
		t.Fatalf("expected 2 removed entries, got %d", removed)
	}
}

func TestJanitor_SweepsAllCaches(t *testing.T) {
	clock := newClock()
	stock := memory.NewTTLCache("stock", time.Minute, memory.WithClock(clock.Now))
	catalog := memory.NewTTLCache("catalog", time.Minute, memory.WithClock(clock.Now))

	if err := stock.Set("s", 1); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := catalog.Set("c", 2); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	clock.Advance(2 * time.Minute)

	janitor := memory.NewJanitor(
		[]*memory.TTLCache{stock, catalog},
		memory.WithSweepInterval(10*time.Millisecond),
		memory.WithSweepBatchSize(10),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	janitor.Run(ctx)

	if stock.Len() != 0 || catalog.Len() != 0 {
		t.Fatalf("expected both caches swept, got %d and %d entries", stock.Len(), catalog.Len())
	}
}
