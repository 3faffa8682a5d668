package upstream

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
)

// RetryConfig — конфигурация повторов для временных ошибок upstream.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingClient оборачивает StockClient экспоненциальным backoff.
// Повторяются только транспортные ошибки и таймауты: NotFound, RateLimited
// и Unauthorized повторами не лечатся и отдаются сразу.
type RetryingClient struct {
	client domain.StockClient
	config RetryConfig
	logger *log.Entry
}

// NewRetryingClient создаёт клиента с retry-логикой поверх base.
func NewRetryingClient(client domain.StockClient, config RetryConfig, logger *log.Entry) *RetryingClient {
	if logger == nil {
		logger = log.WithField("component", "retrying-stock-client")
	}
	if config.MaxAttempts <= 0 {
		config = DefaultRetryConfig()
	}

	return &RetryingClient{
		client: client,
		config: config,
		logger: logger,
	}
}

// LookupStock выполняет поиск наличия, повторяя временные сбои.
func (rc *RetryingClient) LookupStock(ctx context.Context, id domain.ProductID, loc domain.LocationContext) (domain.StockLookup, error) {
	var lastErr error
	delay := rc.config.InitialDelay

	for attempt := 1; attempt <= rc.config.MaxAttempts; attempt++ {
		lookup, err := rc.client.LookupStock(ctx, id, loc)
		if err == nil {
			if attempt > 1 {
				rc.logger.WithFields(log.Fields{
					"product_id": id,
					"attempt":    attempt,
				}).Info("stock lookup succeeded after retry")
			}
			return lookup, nil
		}

		lastErr = err

		if !domain.IsTemporary(err) {
			return domain.StockLookup{}, err
		}

		if attempt < rc.config.MaxAttempts {
			rc.logger.WithFields(log.Fields{
				"product_id": id,
				"attempt":    attempt,
				"delay":      delay,
				"error":      err,
			}).Warn("stock lookup failed, retrying")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return domain.StockLookup{}, ctx.Err()
			case <-timer.C:
			}

			delay = time.Duration(float64(delay) * rc.config.BackoffFactor)
			if delay > rc.config.MaxDelay {
				delay = rc.config.MaxDelay
			}
		}
	}

	rc.logger.WithFields(log.Fields{
		"product_id":   id,
		"max_attempts": rc.config.MaxAttempts,
		"error":        lastErr,
	}).Error("stock lookup failed after all retry attempts")

	return domain.StockLookup{}, lastErr
}

var _ domain.StockClient = (*RetryingClient)(nil)
