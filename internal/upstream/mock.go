package upstream

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
)

// MockClient — конфигурируемая заглушка StockClient для тестов и demo-режима.
// Неизвестный идентификатор ведёт себя как NotFound, что повторяет upstream.
type MockClient struct {
	mu      sync.Mutex
	lookups map[domain.ProductID]domain.StockLookup
	errs    map[domain.ProductID]error

	// Delay имитирует сетевую задержку одного вызова.
	Delay time.Duration

	calls     int
	callsByID map[domain.ProductID]int
}

// NewMockClient возвращает mock без настроенных товаров.
func NewMockClient() *MockClient {
	return &MockClient{
		lookups:   make(map[domain.ProductID]domain.StockLookup),
		errs:      make(map[domain.ProductID]error),
		callsByID: make(map[domain.ProductID]int),
	}
}

// SetLookup настраивает успешный ответ для идентификатора.
func (m *MockClient) SetLookup(id domain.ProductID, lookup domain.StockLookup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[domain.NormalizeProductID(string(id))] = lookup
}

// SetErr настраивает ошибку для идентификатора.
func (m *MockClient) SetErr(id domain.ProductID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[domain.NormalizeProductID(string(id))] = err
}

// Calls возвращает общее число вызовов LookupStock.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// CallsFor возвращает число вызовов по конкретному идентификатору.
func (m *MockClient) CallsFor(id domain.ProductID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callsByID[domain.NormalizeProductID(string(id))]
}

// LookupStock возвращает заранее настроенный результат и считает вызовы.
func (m *MockClient) LookupStock(ctx context.Context, id domain.ProductID, _ domain.LocationContext) (domain.StockLookup, error) {
	key := domain.NormalizeProductID(string(id))

	m.mu.Lock()
	m.calls++
	m.callsByID[key]++
	delay := m.Delay
	err, hasErr := m.errs[key]
	lookup, hasLookup := m.lookups[key]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return domain.StockLookup{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	if hasErr {
		return domain.StockLookup{}, err
	}
	if !hasLookup {
		return domain.StockLookup{}, domain.ErrProductNotFound
	}
	return lookup, nil
}

var _ domain.StockClient = (*MockClient)(nil)
