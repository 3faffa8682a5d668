package memory

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSweepInterval  = time.Minute
	defaultSweepBatchSize = 500
)

var (
	cacheSweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redirector_cache_sweep_runs_total",
		Help: "Total number of cache sweep runs grouped by namespace.",
	}, []string{"namespace"})
	cacheSweepRemovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redirector_cache_sweep_removed_total",
		Help: "Total number of expired cache entries removed by the janitor.",
	}, []string{"namespace"})
	cacheEntriesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "redirector_cache_entries",
		Help: "Number of entries currently stored per cache namespace.",
	}, []string{"namespace"})
)

// JanitorOptions задаёт параметры фоновой уборки кэшей.
type JanitorOptions struct {
	Logger    *log.Entry
	Interval  time.Duration
	BatchSize int
}

// JanitorOption настраивает Janitor.
type JanitorOption func(*JanitorOptions)

// WithJanitorLogger задаёт logger для уборщика.
func WithJanitorLogger(logger *log.Entry) JanitorOption {
	return func(opts *JanitorOptions) {
		opts.Logger = logger
	}
}

// WithSweepInterval задаёт интервал между проходами уборки.
func WithSweepInterval(interval time.Duration) JanitorOption {
	return func(opts *JanitorOptions) {
		opts.Interval = interval
	}
}

// WithSweepBatchSize задаёт максимум удалений за один проход по namespace.
func WithSweepBatchSize(batchSize int) JanitorOption {
	return func(opts *JanitorOptions) {
		opts.BatchSize = batchSize
	}
}

// Janitor периодически убирает истёкшие записи из набора TTL-кэшей.
// Уборка — только гигиена памяти: логическое отсутствие записи
// обеспечивается проверкой TTL на чтении.
type Janitor struct {
	caches    []*TTLCache
	logger    *log.Entry
	interval  time.Duration
	batchSize int
}

// NewJanitor создаёт уборщика для переданных кэшей.
func NewJanitor(caches []*TTLCache, options ...JanitorOption) *Janitor {
	opts := JanitorOptions{
		Interval:  defaultSweepInterval,
		BatchSize: defaultSweepBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cache-janitor")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultSweepBatchSize
	}

	return &Janitor{
		caches:    caches,
		logger:    logger,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
	}
}

// Run запускает периодическую уборку до отмены ctx.
func (j *Janitor) Run(ctx context.Context) {
	if len(j.caches) == 0 {
		j.logger.Warn("cache janitor is disabled: no caches registered")
		return
	}

	j.sweep(time.Now().UTC())

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(time.Now().UTC())
		}
	}
}

func (j *Janitor) sweep(before time.Time) {
	for _, cache := range j.caches {
		removed := cache.DeleteExpired(before, j.batchSize)
		cacheSweepRunsTotal.WithLabelValues(cache.Namespace()).Inc()
		cacheSweepRemovedTotal.WithLabelValues(cache.Namespace()).Add(float64(removed))
		cacheEntriesGauge.WithLabelValues(cache.Namespace()).Set(float64(cache.Len()))

		if removed > 0 {
			j.logger.WithFields(log.Fields{
				"namespace": cache.Namespace(),
				"removed":   removed,
				"remaining": cache.Len(),
			}).Debug("expired cache entries removed")
		}
	}
}
