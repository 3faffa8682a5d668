package availability

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/metrics"
)

// Resolver оркестрирует batch-поиск наличия: дедупликация, кэш,
// конкурентный fan-out к upstream и выбор локации по каждому товару.
// Один неудачный lookup никогда не валит остальных участников batch.
type Resolver struct {
	client       domain.StockClient
	stockCache   domain.Cache
	catalogCache domain.Cache
	logger       *log.Entry
	metrics      *metrics.PipelineMetrics
}

// NewResolver создаёт рабочий экземпляр резолвера.
func NewResolver(client domain.StockClient, stockCache, catalogCache domain.Cache, logger *log.Entry) *Resolver {
	if logger == nil {
		logger = log.WithField("component", "availability-resolver")
	}
	return &Resolver{
		client:       client,
		stockCache:   stockCache,
		catalogCache: catalogCache,
		logger:       logger,
		metrics:      metrics.NewPipelineMetrics(),
	}
}

// NewResolverWithoutMetrics создаёт резолвер без метрик (для тестов).
func NewResolverWithoutMetrics(client domain.StockClient, stockCache, catalogCache domain.Cache, logger *log.Entry) *Resolver {
	if logger == nil {
		logger = log.WithField("component", "availability-resolver")
	}
	return &Resolver{
		client:       client,
		stockCache:   stockCache,
		catalogCache: catalogCache,
		logger:       logger,
		metrics:      nil,
	}
}

// Result — итог batch-резолва: запись наличия по каждому идентификатору
// плюс изолированные ошибки. Запись есть всегда, даже при ошибке lookup.
type Result struct {
	Availability map[domain.ProductID]domain.ProductAvailability
	Errors       []domain.LookupError
}

// Get возвращает запись наличия, нормализуя идентификатор на границе:
// caller получает один и тот же результат для "123" и "0123".
func (r Result) Get(id domain.ProductID) (domain.ProductAvailability, bool) {
	rec, ok := r.Availability[domain.NormalizeProductID(string(id))]
	return rec, ok
}

// ResolveOptions задаёт параметры одного batch-резолва.
type ResolveOptions struct {
	BypassCache bool
}

// ResolveOption настраивает ResolveBatch.
type ResolveOption func(*ResolveOptions)

// WithCacheBypass заставляет batch идти в upstream мимо stock-кэша.
func WithCacheBypass() ResolveOption {
	return func(opts *ResolveOptions) {
		opts.BypassCache = true
	}
}

// ResolveBatch выполняет поиск наличия по множеству идентификаторов.
// Все upstream-вызовы batch-а идут конкурентно: N-элементный batch
// завершается примерно за время самого медленного вызова.
func (r *Resolver) ResolveBatch(ctx context.Context, ids []domain.ProductID, loc domain.LocationContext, options ...ResolveOption) Result {
	start := time.Now()
	if r.metrics != nil {
		r.metrics.RecordResolveStarted()
	}
	defer func() {
		if r.metrics != nil {
			r.metrics.RecordResolveFinished()
			r.metrics.RecordResolveDuration(time.Since(start))
		}
	}()

	opts := ResolveOptions{}
	for _, option := range options {
		option(&opts)
	}

	result := Result{
		Availability: make(map[domain.ProductID]domain.ProductAvailability),
	}

	// Дедупликация по канонической форме с сохранением порядка.
	seen := make(map[domain.ProductID]struct{}, len(ids))
	canonical := make([]domain.ProductID, 0, len(ids))
	for _, raw := range ids {
		id := domain.NormalizeProductID(string(raw))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		canonical = append(canonical, id)
	}

	if len(canonical) == 0 {
		return result
	}

	// Снимок целого batch-а: повторный идентичный запрос в TTL-окне
	// обслуживается одной записью, без пересборки по товарам.
	if !opts.BypassCache {
		if snapshot, ok := r.cachedBatchSnapshot(loc, canonical); ok {
			result.Availability = snapshot
			return result
		}
	}

	pending := make([]domain.ProductID, 0, len(canonical))
	for _, id := range canonical {
		if !opts.BypassCache {
			if lookup, ok := r.cachedLookup(loc, id); ok {
				result.Availability[id] = normalize(id, lookup.Options, loc)
				continue
			}
		}
		pending = append(pending, id)
	}

	if len(pending) == 0 {
		return result
	}

	// Scatter/gather: по одному вызову на идентификатор, без внутреннего
	// троттлинга. Ошибки изолируются по идентификатору (bulkhead).
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, id := range pending {
		wg.Add(1)
		go func(id domain.ProductID) {
			defer wg.Done()

			rec, lookupErr := r.fetchOne(ctx, id, loc)

			mu.Lock()
			defer mu.Unlock()
			result.Availability[id] = rec
			if lookupErr != nil {
				result.Errors = append(result.Errors, *lookupErr)
			}
		}(id)
	}

	wg.Wait()

	// Снимок пишется только когда весь batch получен свежим в этом вызове
	// и без единой ошибки: иначе TTL снимка продлил бы жизнь более старых
	// записей или спрятал бы ошибочные lookups.
	if len(result.Errors) == 0 && len(pending) == len(canonical) {
		if cacheErr := r.stockCache.Set(BatchStockKey(loc, canonical), cloneAvailability(result.Availability)); cacheErr != nil {
			r.logger.WithError(cacheErr).Warn("failed to cache batch snapshot")
		}
	}

	return result
}

// cachedBatchSnapshot достаёт снимок batch-а и отдаёт его копию,
// чтобы caller не мог мутировать закэшированные записи.
func (r *Resolver) cachedBatchSnapshot(loc domain.LocationContext, ids []domain.ProductID) (map[domain.ProductID]domain.ProductAvailability, bool) {
	value, ok := r.stockCache.Get(BatchStockKey(loc, ids))
	if !ok {
		return nil, false
	}

	snapshot, ok := value.(map[domain.ProductID]domain.ProductAvailability)
	if !ok {
		return nil, false
	}

	if r.metrics != nil {
		r.metrics.RecordCacheHit("stock")
	}
	return cloneAvailability(snapshot), true
}

func cloneAvailability(src map[domain.ProductID]domain.ProductAvailability) map[domain.ProductID]domain.ProductAvailability {
	dst := make(map[domain.ProductID]domain.ProductAvailability, len(src))
	for id, rec := range src {
		dst[id] = rec
	}
	return dst
}

// ProductMetadata возвращает метаданные товара из долгоживущего catalog-кэша.
func (r *Resolver) ProductMetadata(id domain.ProductID) (domain.ProductMetadata, bool) {
	value, ok := r.catalogCache.Get(CatalogKey(id))
	if !ok {
		if r.metrics != nil {
			r.metrics.RecordCacheMiss("catalog")
		}
		return domain.ProductMetadata{}, false
	}

	meta, ok := value.(domain.ProductMetadata)
	if !ok {
		return domain.ProductMetadata{}, false
	}

	if r.metrics != nil {
		r.metrics.RecordCacheHit("catalog")
	}
	return meta, true
}

// cachedLookup достаёт сырой результат из stock-кэша.
func (r *Resolver) cachedLookup(loc domain.LocationContext, id domain.ProductID) (domain.StockLookup, bool) {
	value, ok := r.stockCache.Get(StockKey(loc, id))
	if !ok {
		if r.metrics != nil {
			r.metrics.RecordCacheMiss("stock")
		}
		return domain.StockLookup{}, false
	}

	lookup, ok := value.(domain.StockLookup)
	if !ok {
		return domain.StockLookup{}, false
	}

	if r.metrics != nil {
		r.metrics.RecordCacheHit("stock")
	}
	return lookup, true
}

// fetchOne выполняет один upstream-вызов, кэширует сырой результат
// и нормализует его. Любая ошибка даёт запись "недоступен" плюс LookupError.
func (r *Resolver) fetchOne(ctx context.Context, id domain.ProductID, loc domain.LocationContext) (domain.ProductAvailability, *domain.LookupError) {
	start := time.Now()
	lookup, err := r.client.LookupStock(ctx, id, loc)

	if err != nil {
		code := domain.LookupCode(err)
		if r.metrics != nil {
			r.metrics.RecordLookupDuration(code, time.Since(start))
		}

		entry := r.logger.WithFields(log.Fields{
			"product_id": id,
			"zip_code":   loc.ZipCode,
			"code":       code,
		})
		if domain.IsUnauthorized(err) {
			// Системная ошибка конфигурации: изолируем по товару, но кричим.
			if r.metrics != nil {
				r.metrics.RecordUnauthorizedLookup()
			}
			entry.WithError(err).Error("upstream rejected stock lookup as unauthorized")
		} else {
			entry.WithError(err).Warn("stock lookup failed, treating product as unavailable")
		}

		return domain.UnavailableProduct(id), &domain.LookupError{
			ProductID: id,
			Message:   err.Error(),
			Code:      code,
		}
	}

	if r.metrics != nil {
		r.metrics.RecordLookupDuration("success", time.Since(start))
	}

	// Сырой результат кэшируется до нормализации; метаданные уходят
	// в долгоживущий catalog-namespace.
	if cacheErr := r.stockCache.Set(StockKey(loc, id), lookup); cacheErr != nil {
		r.logger.WithError(cacheErr).WithField("product_id", id).Warn("failed to cache stock lookup")
	}
	if lookup.Product.ProductID != "" {
		if cacheErr := r.catalogCache.Set(CatalogKey(id), lookup.Product); cacheErr != nil {
			r.logger.WithError(cacheErr).WithField("product_id", id).Warn("failed to cache product metadata")
		}
	}

	return normalize(id, lookup.Options, loc), nil
}

// normalize выбирает локацию и строит запись наличия.
// Приоритет: (1) запрошенный магазин независимо от стока, (2) первая
// локация со стоком и количеством > 0, (3) первая локация списка.
func normalize(id domain.ProductID, options []domain.FulfillmentOption, loc domain.LocationContext) domain.ProductAvailability {
	if len(options) == 0 {
		return domain.UnavailableProduct(id)
	}

	selected, found := selectOption(options, loc)
	if !found {
		return domain.UnavailableProduct(id)
	}

	quantity := selected.Quantity
	if quantity < 0 {
		quantity = 0
	}

	return domain.ProductAvailability{
		ProductID:         id,
		InStock:           selected.InStock && quantity > 0,
		AvailableQuantity: quantity,
		LocationID:        selected.LocationID,
		LocationName:      selected.LocationName,
		Distance:          selected.Distance,
		Resolved:          true,
	}
}

func selectOption(options []domain.FulfillmentOption, loc domain.LocationContext) (domain.FulfillmentOption, bool) {
	if loc.HasStore() {
		for _, opt := range options {
			if opt.LocationID == loc.StoreID {
				return opt, true
			}
		}
	}

	for _, opt := range options {
		if opt.Usable() {
			return opt, true
		}
	}

	// Ближайшая локация по порядку upstream, пусть и без стока.
	return options[0], true
}
