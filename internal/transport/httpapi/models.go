package httpapi

import "github.com/vladislavdragonenkov/redirector/internal/domain"

// BackupGroupRequest — одна группа товаров во входящем запросе.
type BackupGroupRequest struct {
	PrimaryID string   `json:"primaryId"`
	BackupIDs []string `json:"backupIds,omitempty"`
}

// ResolveRequest — входящий контракт POST /v1/redirect/resolve.
// AllowPDP — указатель: PDP-цели разрешены по умолчанию, и только явное
// `"allowPdp": false` их запрещает. Пропущенное поле не равно false.
type ResolveRequest struct {
	Backups   []BackupGroupRequest `json:"backups"`
	ZipCode   string               `json:"zipCode"`
	StoreID   string               `json:"storeId,omitempty"`
	CustomURL string               `json:"customUrl,omitempty"`
	AllowPDP  *bool                `json:"allowPdp,omitempty"`
	LongLink  string               `json:"longLink"`
}

// allowPDP возвращает действующее значение политики PDP.
func (req ResolveRequest) allowPDP() bool {
	return req.AllowPDP == nil || *req.AllowPDP
}

// SubstitutionResponse — одна строка аудита подстановки в ответе.
type SubstitutionResponse struct {
	OriginalID    string `json:"originalId"`
	ReplacementID string `json:"replacementId"`
	Reason        string `json:"reason"`
}

// OptionsSummaryResponse — объяснение выбора цели редиректа.
type OptionsSummaryResponse struct {
	Mode            string `json:"mode"`
	IncludeStoreID  string `json:"includeStoreId"`
	FallbackApplied bool   `json:"fallbackApplied"`
	FinalType       string `json:"finalType"`
}

// LookupErrorResponse — изолированная ошибка поиска по одному товару.
type LookupErrorResponse struct {
	ProductID string `json:"productId"`
	Message   string `json:"message"`
	Code      string `json:"code"`
}

// ResolveResponse — исходящий контракт POST /v1/redirect/resolve.
type ResolveResponse struct {
	DecisionID             string                 `json:"decisionId"`
	RedirectURL            string                 `json:"redirectUrl"`
	BackupsUsed            bool                   `json:"backupsUsed"`
	BackupProducts         []SubstitutionResponse `json:"backupProducts"`
	AllProductsUnavailable bool                   `json:"allProductsUnavailable"`
	CartURLType            string                 `json:"cartUrlType"`
	CartOptionsSummary     OptionsSummaryResponse `json:"cartOptionsSummary"`
	LookupErrors           []LookupErrorResponse  `json:"lookupErrors,omitempty"`
}

// ProductResponse — ответ GET /v1/products/{productId}.
type ProductResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Brand     string `json:"brand,omitempty"`
	FetchedAt string `json:"fetchedAt"`
}

// ErrorResponse — единый формат ошибок API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toGroups переводит wire-группы в доменные, нормализуя идентификаторы
// на границе: дальше по конвейеру ходят только канонические формы.
func toGroups(in []BackupGroupRequest) []domain.BackupGroup {
	groups := make([]domain.BackupGroup, 0, len(in))
	for _, g := range in {
		groups = append(groups, domain.BackupGroup{
			PrimaryID: domain.NormalizeProductID(g.PrimaryID),
			BackupIDs: domain.NormalizeProductIDs(g.BackupIDs),
		})
	}
	return groups
}

func toSubstitutions(in []domain.SubstitutionRecord) []SubstitutionResponse {
	out := make([]SubstitutionResponse, 0, len(in))
	for _, sub := range in {
		out = append(out, SubstitutionResponse{
			OriginalID:    string(sub.OriginalID),
			ReplacementID: string(sub.ReplacementID),
			Reason:        string(sub.Reason),
		})
	}
	return out
}

func toLookupErrors(in []domain.LookupError) []LookupErrorResponse {
	if len(in) == 0 {
		return nil
	}
	out := make([]LookupErrorResponse, 0, len(in))
	for _, e := range in {
		out = append(out, LookupErrorResponse{
			ProductID: string(e.ProductID),
			Message:   e.Message,
			Code:      e.Code,
		})
	}
	return out
}
