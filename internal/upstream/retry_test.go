package upstream_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/upstream"
)

type flakyClient struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (c *flakyClient) LookupStock(_ context.Context, id domain.ProductID, _ domain.LocationContext) (domain.StockLookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= c.failures {
		return domain.StockLookup{}, c.err
	}
	return domain.StockLookup{Product: domain.ProductMetadata{ProductID: id}}, nil
}

func fastRetryConfig() upstream.RetryConfig {
	return upstream.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetryingClient_RetriesTemporaryErrors(t *testing.T) {
	base := &flakyClient{failures: 2, err: domain.ErrUpstreamTransport}
	client := upstream.NewRetryingClient(base, fastRetryConfig(), nil)

	lookup, err := client.LookupStock(context.Background(), "123", domain.LocationContext{ZipCode: "33101"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if lookup.Product.ProductID != "123" {
		t.Fatalf("unexpected product id: %s", lookup.Product.ProductID)
	}
	if base.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", base.calls)
	}
}

func TestRetryingClient_GivesUpAfterMaxAttempts(t *testing.T) {
	base := &flakyClient{failures: 10, err: domain.ErrUpstreamTimeout}
	client := upstream.NewRetryingClient(base, fastRetryConfig(), nil)

	_, err := client.LookupStock(context.Background(), "123", domain.LocationContext{ZipCode: "33101"})
	if !domain.IsTemporary(err) {
		t.Fatalf("expected the last temporary error, got %v", err)
	}
	if base.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", base.calls)
	}
}

func TestRetryingClient_DoesNotRetryBusinessErrors(t *testing.T) {
	for _, sentinel := range []error{domain.ErrProductNotFound, domain.ErrRateLimited, domain.ErrUnauthorized} {
		base := &flakyClient{failures: 10, err: sentinel}
		client := upstream.NewRetryingClient(base, fastRetryConfig(), nil)

		_, err := client.LookupStock(context.Background(), "123", domain.LocationContext{ZipCode: "33101"})
		if err == nil {
			t.Fatal("expected error")
		}
		if base.calls != 1 {
			t.Fatalf("%v: expected a single attempt, got %d", sentinel, base.calls)
		}
	}
}

func TestRetryingClient_HonoursContextCancellation(t *testing.T) {
	base := &flakyClient{failures: 10, err: domain.ErrUpstreamTransport}
	config := fastRetryConfig()
	config.InitialDelay = time.Minute
	client := upstream.NewRetryingClient(base, config, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.LookupStock(ctx, "123", domain.LocationContext{ZipCode: "33101"})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMockClient_CountsCalls(t *testing.T) {
	mock := upstream.NewMockClient()
	mock.SetLookup("123", domain.StockLookup{Product: domain.ProductMetadata{ProductID: "123"}})

	if _, err := mock.LookupStock(context.Background(), "0123", domain.LocationContext{ZipCode: "33101"}); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if _, err := mock.LookupStock(context.Background(), "unknown", domain.LocationContext{ZipCode: "33101"}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if mock.Calls() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.Calls())
	}
	// Нормализация: "0123" и "123" — один товар.
	if mock.CallsFor("123") != 1 {
		t.Fatalf("expected 1 call for 123, got %d", mock.CallsFor("123"))
	}
}
