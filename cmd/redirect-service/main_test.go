package main

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/redirector/internal/app"
)

func TestReadConfigFromEnv_Defaults(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(nil))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d", len(warnings))
	}

	if cfg != app.DefaultConfig() {
		t.Fatalf("expected default config, got %#v", cfg)
	}
}

func TestReadConfigFromEnv_ValidOverrides(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envAPIAddr:         "localhost:8081",
		envOpsAddr:         "localhost:9091",
		envUpstreamBaseURL: " https://stock.example.com ",
		envUpstreamAPIKey:  " secret ",
		envUpstreamTimeout: "3s",
		envStockTTL:        "2m",
		envCatalogTTL:      "12h",
		envSweepInterval:   "30s",
		envPDPBaseURL:      "https://shop.example.com/product",
		envKafkaBrokers:    "kafka-1:9092,kafka-2:9092",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d", len(warnings))
	}

	if cfg.APIAddr != "localhost:8081" {
		t.Fatalf("unexpected api addr: %s", cfg.APIAddr)
	}
	if cfg.OpsAddr != "localhost:9091" {
		t.Fatalf("unexpected ops addr: %s", cfg.OpsAddr)
	}
	if cfg.UpstreamBaseURL != "https://stock.example.com" {
		t.Fatalf("unexpected upstream base url: %s", cfg.UpstreamBaseURL)
	}
	if cfg.UpstreamAPIKey != "secret" {
		t.Fatalf("unexpected upstream api key: %s", cfg.UpstreamAPIKey)
	}
	if cfg.UpstreamTimeout != 3*time.Second {
		t.Fatalf("unexpected upstream timeout: %s", cfg.UpstreamTimeout)
	}
	if cfg.StockTTL != 2*time.Minute {
		t.Fatalf("unexpected stock ttl: %s", cfg.StockTTL)
	}
	if cfg.CatalogTTL != 12*time.Hour {
		t.Fatalf("unexpected catalog ttl: %s", cfg.CatalogTTL)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Fatalf("unexpected sweep interval: %s", cfg.SweepInterval)
	}
	if cfg.PDPBaseURL != "https://shop.example.com/product" {
		t.Fatalf("unexpected pdp base url: %s", cfg.PDPBaseURL)
	}
	if cfg.KafkaBrokers != "kafka-1:9092,kafka-2:9092" {
		t.Fatalf("unexpected kafka brokers: %s", cfg.KafkaBrokers)
	}
}

func TestReadConfigFromEnv_InvalidDurationsKeepDefaults(t *testing.T) {
	defaults := app.DefaultConfig()

	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envUpstreamTimeout: "soon",
		envStockTTL:        "-5m",
		envSweepInterval:   "0s",
	}))

	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}

	if cfg.UpstreamTimeout != defaults.UpstreamTimeout {
		t.Fatalf("invalid timeout must keep default, got %s", cfg.UpstreamTimeout)
	}
	if cfg.StockTTL != defaults.StockTTL {
		t.Fatalf("negative ttl must keep default, got %s", cfg.StockTTL)
	}
	if cfg.SweepInterval != defaults.SweepInterval {
		t.Fatalf("zero interval must keep default, got %s", cfg.SweepInterval)
	}
}

func TestReadConfigFromEnv_EmptyValuesIgnored(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envAPIAddr:  "",
		envStockTTL: "",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d", len(warnings))
	}
	if cfg != app.DefaultConfig() {
		t.Fatalf("empty values must keep defaults, got %#v", cfg)
	}
}
