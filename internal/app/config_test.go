package app

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.APIAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.APIAddr)
	}
	if cfg.OpsAddr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.OpsAddr)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("expected 10s upstream timeout, got %s", cfg.UpstreamTimeout)
	}
	if cfg.StockTTL != 5*time.Minute {
		t.Errorf("expected 5m stock ttl, got %s", cfg.StockTTL)
	}
	if cfg.CatalogTTL != 6*time.Hour {
		t.Errorf("expected 6h catalog ttl, got %s", cfg.CatalogTTL)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("expected 1m sweep interval, got %s", cfg.SweepInterval)
	}
	if cfg.PDPBaseURL == "" {
		t.Error("pdp base url must have a default")
	}
	if cfg.KafkaBrokers != "" {
		t.Error("kafka must be disabled by default")
	}
}
