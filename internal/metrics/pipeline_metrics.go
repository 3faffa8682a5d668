package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics содержит метрики конвейера resolve → select → build.
type PipelineMetrics struct {
	// Счётчики кэша по namespace
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Гистограммы времени выполнения
	resolveDuration prometheus.Histogram
	lookupDuration  *prometheus.HistogramVec

	// Счётчики результата подстановки
	substitutions     *prometheus.CounterVec
	unavailableGroups prometheus.Counter
	fallbacks         *prometheus.CounterVec

	// Системные ошибки авторизации должны быть громкими
	unauthorizedLookups prometheus.Counter

	// Gauge активных resolve-запросов
	activeResolves prometheus.Gauge
}

// NewPipelineMetrics создаёт новый экземпляр метрик конвейера.
func NewPipelineMetrics() *PipelineMetrics {
	return newPipelineMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPipelineMetricsWithRegisterer(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PipelineMetrics{
		cacheHits: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "redirector_cache_hits_total",
			Help: "Total number of cache hits grouped by namespace",
		}, []string{"namespace"}),
		cacheMisses: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "redirector_cache_misses_total",
			Help: "Total number of cache misses grouped by namespace",
		}, []string{"namespace"}),
		resolveDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "redirector_resolve_batch_duration_seconds",
			Help:    "Duration of availability batch resolutions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		lookupDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "redirector_stock_lookup_duration_seconds",
			Help:    "Duration of individual upstream stock lookups in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"outcome"}),
		substitutions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "redirector_substitutions_total",
			Help: "Total number of backup substitutions grouped by reason",
		}, []string{"reason"}),
		unavailableGroups: registerCounter(registerer, prometheus.CounterOpts{
			Name: "redirector_unavailable_groups_total",
			Help: "Total number of backup groups with no usable candidate",
		}),
		fallbacks: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "redirector_fallback_redirects_total",
			Help: "Total number of non-PDP redirect decisions grouped by url type",
		}, []string{"url_type"}),
		unauthorizedLookups: registerCounter(registerer, prometheus.CounterOpts{
			Name: "redirector_unauthorized_lookups_total",
			Help: "Total number of upstream lookups rejected as unauthorized",
		}),
		activeResolves: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "redirector_active_resolves",
			Help: "Number of currently running batch resolutions",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCacheHit увеличивает счётчик попаданий в кэш.
func (m *PipelineMetrics) RecordCacheHit(namespace string) {
	m.cacheHits.WithLabelValues(namespace).Inc()
}

// RecordCacheMiss увеличивает счётчик промахов кэша.
func (m *PipelineMetrics) RecordCacheMiss(namespace string) {
	m.cacheMisses.WithLabelValues(namespace).Inc()
}

// RecordResolveDuration записывает время полного batch-резолва.
func (m *PipelineMetrics) RecordResolveDuration(duration time.Duration) {
	m.resolveDuration.Observe(duration.Seconds())
}

// RecordLookupDuration записывает время одного upstream-вызова по исходу.
func (m *PipelineMetrics) RecordLookupDuration(outcome string, duration time.Duration) {
	m.lookupDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordSubstitution увеличивает счётчик подстановок по причине.
func (m *PipelineMetrics) RecordSubstitution(reason string) {
	m.substitutions.WithLabelValues(reason).Inc()
}

// RecordUnavailableGroup увеличивает счётчик полностью недоступных групп.
func (m *PipelineMetrics) RecordUnavailableGroup() {
	m.unavailableGroups.Inc()
}

// RecordFallback увеличивает счётчик решений, не пришедших к PDP.
func (m *PipelineMetrics) RecordFallback(urlType string) {
	m.fallbacks.WithLabelValues(urlType).Inc()
}

// RecordUnauthorizedLookup увеличивает счётчик системных ошибок авторизации.
func (m *PipelineMetrics) RecordUnauthorizedLookup() {
	m.unauthorizedLookups.Inc()
}

// RecordResolveStarted увеличивает число активных резолвов.
func (m *PipelineMetrics) RecordResolveStarted() {
	m.activeResolves.Inc()
}

// RecordResolveFinished уменьшает число активных резолвов.
func (m *PipelineMetrics) RecordResolveFinished() {
	m.activeResolves.Dec()
}
