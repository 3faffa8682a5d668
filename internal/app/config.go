package app

import "time"

// Config описывает настройки запуска сервиса редиректов.
type Config struct {
	// APIAddr — адрес основного REST API.
	APIAddr string
	// OpsAddr — адрес служебного сервера: /metrics и health-пробы.
	OpsAddr string

	// UpstreamBaseURL — база stock-API; пустое значение включает mock-клиент.
	UpstreamBaseURL string
	// UpstreamAPIKey передаётся upstream-у в заголовке X-API-Key.
	UpstreamAPIKey string
	// UpstreamTimeout ограничивает один запрос к upstream.
	UpstreamTimeout time.Duration

	// StockTTL — TTL по умолчанию для stock-namespace.
	StockTTL time.Duration
	// CatalogTTL — TTL по умолчанию для catalog-namespace.
	CatalogTTL time.Duration
	// SweepInterval — период фоновой чистки истёкших записей.
	SweepInterval time.Duration

	// PDPBaseURL — база ссылок на страницу товара.
	PDPBaseURL string

	// KafkaBrokers — список брокеров через запятую; пустое значение
	// отключает публикацию событий.
	KafkaBrokers string
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		APIAddr:         ":8080",
		OpsAddr:         ":9090",
		UpstreamTimeout: 10 * time.Second,
		StockTTL:        5 * time.Minute,
		CatalogTTL:      6 * time.Hour,
		SweepInterval:   time.Minute,
		PDPBaseURL:      "https://shop.example.com/ip",
	}
}
