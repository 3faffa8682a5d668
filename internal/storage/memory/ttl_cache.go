package memory

import (
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
)

// entry хранит значение вместе с моментом записи и индивидуальным TTL.
// После записи entry неизменяема; единственный путь исчезновения — истечение TTL.
type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// TTLCache — потокобезопасный in-memory кэш одного namespace.
// Объём не ограничен: в пределах жизни процесса рост допустим,
// фоновая уборка делается Janitor-ом.
type TTLCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	namespace  string
	defaultTTL time.Duration
	now        func() time.Time
	logger     *log.Entry
}

// Option настраивает TTLCache.
type Option func(*TTLCache)

// WithClock подменяет источник времени (для тестов границы TTL).
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger задаёт logger кэша.
func WithLogger(logger *log.Entry) Option {
	return func(c *TTLCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTTLCache создаёт кэш с TTL по умолчанию для namespace.
func NewTTLCache(namespace string, defaultTTL time.Duration, options ...Option) *TTLCache {
	c := &TTLCache{
		items:      make(map[string]entry),
		namespace:  namespace,
		defaultTTL: defaultTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = log.WithField("component", "ttl-cache").WithField("namespace", namespace)
	}
	return c
}

// Namespace возвращает имя namespace кэша.
func (c *TTLCache) Namespace() string {
	return c.namespace
}

// Get возвращает значение, если запись существует и ещё не истекла.
// Запись жива ровно до момента now - storedAt > ttl включительно.
func (c *TTLCache) Get(key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.expired(e, c.now()) {
		return nil, false
	}
	return e.value, true
}

// Set сохраняет значение с TTL по умолчанию для этого namespace.
// Отсутствие явного TTL никогда не трактуется как "хранить вечно".
func (c *TTLCache) Set(key string, value any) error {
	return c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL сохраняет значение с явным TTL. Неположительный ttl
// заменяется на default namespace, чтобы запись не стала вечной.
func (c *TTLCache) SetWithTTL(key string, value any, ttl time.Duration) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrCacheKeyRequired
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
	return nil
}

// Len возвращает число записей, включая ещё не убранные истёкшие.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// DeleteExpired удаляет записи, истёкшие к моменту before, и возвращает
// число удалённых. limit <= 0 означает "без ограничения".
func (c *TTLCache) DeleteExpired(before time.Time, limit int) int {
	if before.IsZero() {
		before = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.items {
		if !c.expired(e, before) {
			continue
		}

		delete(c.items, key)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}

	return removed
}

func (c *TTLCache) expired(e entry, at time.Time) bool {
	return at.Sub(e.storedAt) > e.ttl
}

var _ domain.Cache = (*TTLCache)(nil)
