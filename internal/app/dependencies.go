package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/service/availability"
	"github.com/vladislavdragonenkov/redirector/internal/service/decision"
	"github.com/vladislavdragonenkov/redirector/internal/service/redirect"
	"github.com/vladislavdragonenkov/redirector/internal/service/substitution"
	"github.com/vladislavdragonenkov/redirector/internal/storage/memory"
	"github.com/vladislavdragonenkov/redirector/internal/upstream"
)

// Dependencies содержит собранные компоненты конвейера разрешения.
type Dependencies struct {
	StockCache   *memory.TTLCache
	CatalogCache *memory.TTLCache
	StockClient  domain.StockClient
	Resolver     *availability.Resolver
	Decisions    *decision.Service
	Logger       *log.Entry
}

// NewDependencies создаёт и связывает компоненты приложения.
// Пустой UpstreamBaseURL включает mock-клиент для локальной разработки.
func NewDependencies(cfg Config, publisher domain.EventPublisher, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	stockCache := memory.NewTTLCache("stock", cfg.StockTTL,
		memory.WithLogger(logger.WithField("cache", "stock")))
	catalogCache := memory.NewTTLCache("catalog", cfg.CatalogTTL,
		memory.WithLogger(logger.WithField("cache", "catalog")))

	var client domain.StockClient
	if cfg.UpstreamBaseURL == "" {
		logger.Warn("upstream base url is empty, using mock stock client")
		client = upstream.NewMockClient()
	} else {
		httpClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamTimeout,
			logger.WithField("component", "stock-client"))
		client = upstream.NewRetryingClient(httpClient, upstream.DefaultRetryConfig(),
			logger.WithField("component", "stock-client"))
	}

	resolver := availability.NewResolver(client, stockCache, catalogCache,
		logger.WithField("component", "availability-resolver"))
	engine := substitution.NewEngine(logger.WithField("component", "substitution-engine"))
	builder := redirect.NewBuilder(cfg.PDPBaseURL, logger.WithField("component", "redirect-builder"))

	decisions := decision.NewService(resolver, engine, builder, publisher,
		logger.WithField("component", "decision-service"))

	return &Dependencies{
		StockCache:   stockCache,
		CatalogCache: catalogCache,
		StockClient:  client,
		Resolver:     resolver,
		Decisions:    decisions,
		Logger:       logger,
	}
}
