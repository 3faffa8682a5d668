package domain

import (
	"context"
	"time"
)

// StockClient описывает взаимодействие с upstream-источником наличия.
// Один вызов покрывает ровно один идентификатор: batch-режима у upstream нет.
type StockClient interface {
	// LookupStock возвращает сырой результат поиска наличия для товара
	// в заданном географическом контексте. Список опций упорядочен
	// по возрастанию расстояния.
	LookupStock(ctx context.Context, id ProductID, loc LocationContext) (StockLookup, error)
}

// Cache — process-local TTL-кэш одного namespace. Записи неизменяемы после
// создания и логически исчезают по истечении TTL; других путей инвалидации нет.
type Cache interface {
	// Get возвращает значение по ключу, если запись существует и не истекла.
	Get(key string) (any, bool)
	// Set сохраняет значение с TTL по умолчанию для namespace этого кэша.
	// Отсутствие явного TTL никогда не означает "хранить вечно".
	Set(key string, value any) error
	// SetWithTTL сохраняет значение с явным TTL.
	SetWithTTL(key string, value any, ttl time.Duration) error
}

// EventPublisher публикует события решения наружу; ошибка публикации
// никогда не влияет на само решение.
type EventPublisher interface {
	PublishEvent(topic string, key string, event any) error
}
