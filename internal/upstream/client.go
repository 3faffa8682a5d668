package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client — HTTP-клиент каталога наличия. Один вызов покрывает ровно один
// идентификатор товара; batch-режима у upstream нет.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Entry
}

// NewClient создаёт клиента каталога. Неположительный timeout
// заменяется на значение по умолчанию.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *log.Entry) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.WithField("component", "stock-client")
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// productPayload и optionPayload — wire-формат ответа upstream.
type productPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

type optionPayload struct {
	LocationID   string  `json:"locationId"`
	LocationName string  `json:"locationName"`
	InStock      bool    `json:"inStock"`
	Quantity     int     `json:"quantity"`
	Distance     float64 `json:"distance"`
	Address      string  `json:"address"`
}

type stockPayload struct {
	Product productPayload  `json:"product"`
	Options []optionPayload `json:"options"`
}

// LookupStock запрашивает наличие товара в заданном географическом контексте.
// Ошибки транслируются в таксономию domain: NotFound, RateLimited,
// Unauthorized, Timeout, Transport. Список опций upstream отдаёт
// упорядоченным по возрастанию расстояния.
func (c *Client) LookupStock(ctx context.Context, id domain.ProductID, loc domain.LocationContext) (domain.StockLookup, error) {
	endpoint := fmt.Sprintf("%s/v1/stock/%s", c.baseURL, url.PathEscape(string(id)))

	query := url.Values{}
	query.Set("zip", loc.ZipCode)
	if loc.HasStore() {
		query.Set("store", loc.StoreID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return domain.StockLookup{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.StockLookup{}, c.transportError(id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// разбор ниже
	case http.StatusNotFound:
		return domain.StockLookup{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	case http.StatusTooManyRequests:
		return domain.StockLookup{}, fmt.Errorf("%w: %s", domain.ErrRateLimited, id)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.StockLookup{}, fmt.Errorf("%w: status %d", domain.ErrUnauthorized, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.StockLookup{}, fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamTransport, resp.StatusCode, string(body))
	}

	var payload stockPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.StockLookup{}, fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamTransport, err)
	}

	return c.toDomain(id, payload), nil
}

// transportError отличает таймаут от прочих сетевых ошибок.
func (c *Client) transportError(id domain.ProductID, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamTimeout, id)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamTimeout, id)
	}

	return fmt.Errorf("%w: %v", domain.ErrUpstreamTransport, err)
}

func (c *Client) toDomain(requested domain.ProductID, payload stockPayload) domain.StockLookup {
	id := domain.NormalizeProductID(payload.Product.ID)
	if id == "" {
		id = requested
	}

	lookup := domain.StockLookup{
		Product: domain.ProductMetadata{
			ProductID: id,
			Name:      payload.Product.Name,
			Brand:     payload.Product.Brand,
			FetchedAt: time.Now().UTC(),
		},
		Options: make([]domain.FulfillmentOption, 0, len(payload.Options)),
	}

	for _, opt := range payload.Options {
		lookup.Options = append(lookup.Options, domain.FulfillmentOption{
			LocationID:   opt.LocationID,
			LocationName: opt.LocationName,
			InStock:      opt.InStock,
			Quantity:     opt.Quantity,
			Distance:     opt.Distance,
			Address:      opt.Address,
		})
	}

	return lookup
}

var _ domain.StockClient = (*Client)(nil)
