package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/redirector/internal/health"
	"github.com/vladislavdragonenkov/redirector/internal/storage/memory"
	"github.com/vladislavdragonenkov/redirector/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/redirector/internal/version"
)

// Run собирает зависимости, поднимает API и служебный сервер и работает
// до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	var publisher domain.EventPublisher
	if producer != nil {
		publisher = producer
	}

	deps := NewDependencies(cfg, publisher, logger)

	// Фоновая чистка истёкших записей обоих namespace.
	janitor := memory.NewJanitor(
		[]*memory.TTLCache{deps.StockCache, deps.CatalogCache},
		memory.WithJanitorLogger(logger.WithField("component", "cache-janitor")),
		memory.WithSweepInterval(cfg.SweepInterval),
	)
	go janitor.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.Get().Version)
	healthHandler.RegisterChecker("stock-cache", healthcheck.NewCacheChecker("stock-cache", deps.StockCache))
	healthHandler.RegisterChecker("catalog-cache", healthcheck.NewCacheChecker("catalog-cache", deps.CatalogCache))
	if cfg.UpstreamBaseURL != "" {
		healthHandler.RegisterChecker("upstream",
			healthcheck.NewUpstreamChecker("upstream", cfg.UpstreamBaseURL, cfg.UpstreamTimeout))
	}

	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	router := httpapi.NewRouter(deps.Decisions, logger.WithField("component", "http-api"))
	apiSrv := &http.Server{Addr: cfg.APIAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API слушает %s", cfg.APIAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP серверы")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		closeKafka(producer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		closeKafka(producer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startOpsServer запускает служебный сервер: /metrics и health-пробы.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
