package domain

import "errors"

var (
	// Ошибка пустого списка групп подстановки.
	ErrGroupsRequired = errors.New("at least one backup group is required")
	// Ошибка отсутствующего или не пятизначного почтового индекса.
	ErrZipCodeInvalid = errors.New("zip code must be a 5-digit string")
	// Ошибка отсутствующей резервной длинной ссылки.
	ErrLongLinkRequired = errors.New("long link is required")
	// Ошибка пустого идентификатора товара.
	ErrProductIDRequired = errors.New("product id is required")

	// ErrProductNotFound — upstream не знает такой идентификатор.
	// Для подстановки трактуется как "недоступен", batch не прерывает.
	ErrProductNotFound = errors.New("product not found upstream")
	// ErrRateLimited — upstream ограничил частоту запросов; для этого вызова
	// товар считается недоступным, но код ошибки остаётся различимым.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
	// ErrUnauthorized — системная ошибка авторизации у upstream.
	// Изолируется по идентификатору, но логируется громко.
	ErrUnauthorized = errors.New("upstream authorization failed")
	// ErrUpstreamTimeout — вызов не уложился в настроенный таймаут.
	ErrUpstreamTimeout = errors.New("upstream call timed out")
	// ErrUpstreamTransport — сетевая или протокольная ошибка upstream.
	ErrUpstreamTransport = errors.New("upstream transport error")

	// ErrCacheKeyRequired возвращается кэшем при пустом ключе.
	ErrCacheKeyRequired = errors.New("cache key is required")
)

// IsNotFound проверяет класс "идентификатор неизвестен upstream".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

// IsRateLimited проверяет класс "превышен лимит запросов".
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnauthorized проверяет системный класс ошибок авторизации.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsTemporary сообщает, имеет ли смысл повторить вызов upstream.
// NotFound, Unauthorized и RateLimited повторами не лечатся.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout) || errors.Is(err, ErrUpstreamTransport)
}

// LookupCode отображает ошибку upstream в код LookupError.
func LookupCode(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return LookupCodeNotFound
	case errors.Is(err, ErrRateLimited):
		return LookupCodeRateLimited
	case errors.Is(err, ErrUnauthorized):
		return LookupCodeUnauthorized
	case errors.Is(err, ErrUpstreamTimeout):
		return LookupCodeTimeout
	default:
		return LookupCodeTransport
	}
}
