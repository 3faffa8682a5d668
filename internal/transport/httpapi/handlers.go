package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/service/decision"
)

var zipCodePattern = regexp.MustCompile(`^\d{5}$`)

// DecisionService — срез decision-сервиса, нужный транспортному слою.
type DecisionService interface {
	Resolve(ctx context.Context, req decision.Request) decision.Response
	ProductMetadata(id domain.ProductID) (domain.ProductMetadata, bool)
}

// RedirectHandler обслуживает REST-поверхность сервиса редиректов.
type RedirectHandler struct {
	decisions DecisionService
	logger    *log.Entry
}

// NewRedirectHandler создает новый handler редиректов.
func NewRedirectHandler(decisions DecisionService, logger *log.Entry) *RedirectHandler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &RedirectHandler{decisions: decisions, logger: logger}
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{Code: code, Message: message})
}

// validate проверяет форму запроса до передачи в движок: движок доверяет
// контракту и сам входные данные не валидирует.
func (req ResolveRequest) validate() error {
	if len(req.Backups) == 0 {
		return domain.ErrGroupsRequired
	}
	for _, g := range req.Backups {
		if strings.TrimSpace(g.PrimaryID) == "" {
			return domain.ErrProductIDRequired
		}
	}
	if !zipCodePattern.MatchString(req.ZipCode) {
		return domain.ErrZipCodeInvalid
	}
	if strings.TrimSpace(req.LongLink) == "" {
		return domain.ErrLongLinkRequired
	}
	return nil
}

// Resolve обрабатывает POST /v1/redirect/resolve.
func (h *RedirectHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Warn("invalid JSON in resolve request")
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	if err := req.validate(); err != nil {
		h.logger.WithError(err).Warn("resolve request failed validation")
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	resp := h.decisions.Resolve(r.Context(), decision.Request{
		Groups:    toGroups(req.Backups),
		Location:  domain.LocationContext{ZipCode: req.ZipCode, StoreID: req.StoreID},
		LongLink:  req.LongLink,
		CustomURL: req.CustomURL,
		AllowPDP:  req.allowPDP(),
	})

	writeJSON(w, http.StatusOK, ResolveResponse{
		DecisionID:             resp.DecisionID,
		RedirectURL:            resp.RedirectURL,
		BackupsUsed:            resp.BackupsUsed,
		BackupProducts:         toSubstitutions(resp.BackupProducts),
		AllProductsUnavailable: resp.AllProductsUnavailable,
		CartURLType:            string(resp.CartURLType),
		CartOptionsSummary: OptionsSummaryResponse{
			Mode:            resp.CartOptionsSummary.Mode,
			IncludeStoreID:  resp.CartOptionsSummary.IncludeStoreID,
			FallbackApplied: resp.CartOptionsSummary.FallbackApplied,
			FinalType:       resp.CartOptionsSummary.FinalType,
		},
		LookupErrors: toLookupErrors(resp.LookupErrors),
	})
}

// Redirect обрабатывает GET /v1/redirect: то же разрешение, управляемое
// query-параметрами, с ответом 302 на финальную цель. Каждый идентификатор
// в products задаёт группу вида "id|backup1|backup2".
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	allowPDP := q.Get("allowPdp") != "false"
	req := ResolveRequest{
		ZipCode:   q.Get("zip"),
		StoreID:   q.Get("store"),
		CustomURL: q.Get("customUrl"),
		AllowPDP:  &allowPDP,
		LongLink:  q.Get("longLink"),
	}
	for _, param := range q["products"] {
		for _, raw := range strings.Split(param, ",") {
			parts := strings.Split(raw, "|")
			if parts[0] == "" {
				continue
			}
			req.Backups = append(req.Backups, BackupGroupRequest{
				PrimaryID: parts[0],
				BackupIDs: parts[1:],
			})
		}
	}

	if err := req.validate(); err != nil {
		h.logger.WithError(err).Warn("redirect request failed validation")
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	resp := h.decisions.Resolve(r.Context(), decision.Request{
		Groups:    toGroups(req.Backups),
		Location:  domain.LocationContext{ZipCode: req.ZipCode, StoreID: req.StoreID},
		LongLink:  req.LongLink,
		CustomURL: req.CustomURL,
		AllowPDP:  req.allowPDP(),
	})

	http.Redirect(w, r, resp.RedirectURL, http.StatusFound)
}

// Product обрабатывает GET /v1/products/{productId} из catalog-кэша.
func (h *RedirectHandler) Product(w http.ResponseWriter, r *http.Request) {
	id := domain.NormalizeProductID(mux.Vars(r)["productId"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", domain.ErrProductIDRequired.Error())
		return
	}

	meta, ok := h.decisions.ProductMetadata(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "product metadata is not cached")
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{
		ProductID: string(meta.ProductID),
		Name:      meta.Name,
		Brand:     meta.Brand,
		FetchedAt: meta.FetchedAt.Format(time.RFC3339),
	})
}
