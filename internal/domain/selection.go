package domain

// BackupGroup — основной товар плюс упорядоченный список запасных.
// Порядок BackupIDs задаёт приоритет подстановки; дубликаты допустимы,
// но выбран может быть только первый подходящий в порядке обхода.
type BackupGroup struct {
	PrimaryID ProductID
	BackupIDs []ProductID
}

// SubstitutionReason объясняет, почему основной товар был заменён.
type SubstitutionReason string

const (
	// ReasonOutOfStock — по основному товару есть запись наличия, но он недоступен.
	ReasonOutOfStock SubstitutionReason = "OUT_OF_STOCK"
	// ReasonPrimaryUnusable — по основному товару нет записи наличия вовсе.
	ReasonPrimaryUnusable SubstitutionReason = "PRIMARY_UNUSABLE"
)

// SubstitutionRecord — одна строка аудита подстановки.
type SubstitutionRecord struct {
	OriginalID    ProductID          `json:"original_id"`
	ReplacementID ProductID          `json:"replacement_id"`
	Reason        SubstitutionReason `json:"reason"`
}

// SelectedProduct — выбранный для группы товар вместе с его записью наличия.
type SelectedProduct struct {
	ProductID    ProductID           `json:"product_id"`
	Availability ProductAvailability `json:"availability"`
}

// SelectionResult — итог работы движка подстановки по всем группам.
// Инвариант: len(SelectedProducts) + len(UnavailableGroups) == числу групп,
// каждая группа даёт не более одной позиции в SelectedProducts.
type SelectionResult struct {
	SelectedProducts  []SelectedProduct    `json:"selected_products"`
	Substitutions     []SubstitutionRecord `json:"substitutions"`
	UnavailableGroups []ProductID          `json:"unavailable_groups"`
}

// LookupError — изолированная ошибка поиска по одному идентификатору.
// Никогда не прерывает batch целиком.
type LookupError struct {
	ProductID ProductID `json:"product_id"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
}

// Коды LookupError, различимые для мониторинга.
const (
	LookupCodeNotFound     = "not_found"
	LookupCodeRateLimited  = "rate_limited"
	LookupCodeUnauthorized = "unauthorized"
	LookupCodeTimeout      = "timeout"
	LookupCodeTransport    = "transport"
)

// URLType — тип финальной цели редиректа.
type URLType string

const (
	URLTypePDP      URLType = "pdp"
	URLTypeLongLink URLType = "longLink"
	URLTypeCustom   URLType = "custom"
)

// OptionsSummary — машиночитаемое объяснение того, как выбрана цель редиректа.
// IncludeStoreID всегда "never": используемый формат ссылок не встраивает магазин.
type OptionsSummary struct {
	Mode            string `json:"mode"`
	IncludeStoreID  string `json:"includeStoreId"`
	FallbackApplied bool   `json:"fallbackApplied"`
	FinalType       string `json:"finalType"`
}

// RedirectDecision — финальное решение о редиректе.
// Инвариант: FallbackApplied истинно тогда и только тогда, когда URLType != pdp.
type RedirectDecision struct {
	RedirectURL string         `json:"redirect_url"`
	URLType     URLType        `json:"url_type"`
	Summary     OptionsSummary `json:"summary"`
}
