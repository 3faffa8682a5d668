package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/app"
	"github.com/vladislavdragonenkov/redirector/internal/version"
)

// Переменные окружения сервиса.
const (
	envAPIAddr         = "REDIRECTOR_API_ADDR"
	envOpsAddr         = "REDIRECTOR_OPS_ADDR"
	envUpstreamBaseURL = "REDIRECTOR_UPSTREAM_BASE_URL"
	envUpstreamAPIKey  = "REDIRECTOR_UPSTREAM_API_KEY"
	envUpstreamTimeout = "REDIRECTOR_UPSTREAM_TIMEOUT"
	envStockTTL        = "REDIRECTOR_STOCK_TTL"
	envCatalogTTL      = "REDIRECTOR_CATALOG_TTL"
	envSweepInterval   = "REDIRECTOR_SWEEP_INTERVAL"
	envPDPBaseURL      = "REDIRECTOR_PDP_BASE_URL"
	envKafkaBrokers    = "REDIRECTOR_KAFKA_BROKERS"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

type lookupFunc func(key string) (string, bool)

// mapLookup адаптирует map к lookupFunc для тестов.
func mapLookup(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// readConfigFromEnv читает конфигурацию через lookup. Невалидные значения
// длительностей не прерывают запуск: значение по умолчанию остаётся,
// а предупреждение возвращается вызывающему.
func readConfigFromEnv(lookup lookupFunc) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := lookup(envAPIAddr); ok && v != "" {
		cfg.APIAddr = v
	}
	if v, ok := lookup(envOpsAddr); ok && v != "" {
		cfg.OpsAddr = v
	}
	if v, ok := lookup(envUpstreamBaseURL); ok {
		cfg.UpstreamBaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(envUpstreamAPIKey); ok {
		cfg.UpstreamAPIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(envPDPBaseURL); ok && v != "" {
		cfg.PDPBaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = strings.TrimSpace(v)
	}

	readDuration(lookup, envUpstreamTimeout, &cfg.UpstreamTimeout, &warnings)
	readDuration(lookup, envStockTTL, &cfg.StockTTL, &warnings)
	readDuration(lookup, envCatalogTTL, &cfg.CatalogTTL, &warnings)
	readDuration(lookup, envSweepInterval, &cfg.SweepInterval, &warnings)

	return cfg, warnings
}

func readDuration(lookup lookupFunc, key string, target *time.Duration, warnings *[]string) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s: invalid duration %q, keeping default", key, v))
		return
	}
	*target = d
}

func main() {
	setupLogger()

	// .env опционален: используется в локальной разработке.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env file")
	}

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"api_addr": cfg.APIAddr,
		"ops_addr": cfg.OpsAddr,
		"version":  version.Get().String(),
	}).Info("запускаем сервис редиректов")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("сервис редиректов остановлен")
}
