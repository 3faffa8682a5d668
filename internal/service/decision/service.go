package decision

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/redirector/internal/service/availability"
	"github.com/vladislavdragonenkov/redirector/internal/service/redirect"
	"github.com/vladislavdragonenkov/redirector/internal/service/substitution"
)

// Request — уже провалидированный запрос на разрешение редиректа.
// Валидация формы (число групп, формат zip, наличие longLink) выполняется
// на транспортном слое; сервис доверяет контракту вызывающего.
type Request struct {
	Groups    []domain.BackupGroup
	Location  domain.LocationContext
	LongLink  string
	CustomURL string
	AllowPDP  bool
}

// Response — итог разрешения: финальная цель редиректа плюс аудит.
type Response struct {
	DecisionID             string
	RedirectURL            string
	BackupsUsed            bool
	BackupProducts         []domain.SubstitutionRecord
	AllProductsUnavailable bool
	CartURLType            domain.URLType
	CartOptionsSummary     domain.OptionsSummary
	SelectedProducts       []domain.SelectedProduct
	LookupErrors           []domain.LookupError
}

// Service связывает resolver, движок подстановки и builder редиректа
// в один сквозной сценарий и публикует события принятых решений.
type Service struct {
	resolver  *availability.Resolver
	engine    *substitution.Engine
	builder   *redirect.Builder
	publisher domain.EventPublisher
	logger    *log.Entry
}

// NewService создает сервис решений. publisher может быть nil: тогда
// события не публикуются, а само решение принимается как обычно.
func NewService(
	resolver *availability.Resolver,
	engine *substitution.Engine,
	builder *redirect.Builder,
	publisher domain.EventPublisher,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "decision-service")
	}
	return &Service{
		resolver:  resolver,
		engine:    engine,
		builder:   builder,
		publisher: publisher,
		logger:    logger,
	}
}

// Resolve выполняет полный цикл: наличие -> подстановка -> цель редиректа.
// Отдельные ошибки поиска изолируются в LookupErrors; редирект выдается всегда.
func (s *Service) Resolve(ctx context.Context, req Request) Response {
	decisionID := uuid.New().String()
	logger := s.logger.WithField("decision_id", decisionID)

	result := s.resolver.ResolveBatch(ctx, collectIDs(req.Groups), req.Location)
	selection := s.engine.Select(req.Groups, result.Availability)
	target := s.builder.Build(selection, redirect.Fallback{
		LongLink:  req.LongLink,
		CustomURL: req.CustomURL,
		AllowPDP:  req.AllowPDP,
	})

	resp := Response{
		DecisionID:             decisionID,
		RedirectURL:            target.RedirectURL,
		BackupsUsed:            len(selection.Substitutions) > 0,
		BackupProducts:         selection.Substitutions,
		AllProductsUnavailable: len(selection.SelectedProducts) == 0,
		CartURLType:            target.URLType,
		CartOptionsSummary:     target.Summary,
		SelectedProducts:       selection.SelectedProducts,
		LookupErrors:           result.Errors,
	}

	logger.WithFields(log.Fields{
		"groups":        len(req.Groups),
		"selected":      len(selection.SelectedProducts),
		"substitutions": len(selection.Substitutions),
		"unavailable":   len(selection.UnavailableGroups),
		"url_type":      target.URLType,
		"lookup_errors": len(result.Errors),
	}).Info("redirect decision resolved")

	s.publishDecision(logger, req, resp, selection)

	return resp
}

// ProductMetadata возвращает закэшированные метаданные товара.
func (s *Service) ProductMetadata(id domain.ProductID) (domain.ProductMetadata, bool) {
	return s.resolver.ProductMetadata(id)
}

func (s *Service) publishDecision(logger *log.Entry, req Request, resp Response, selection domain.SelectionResult) {
	if s.publisher == nil {
		return
	}

	eventType := kafka.EventTypeDecisionResolved
	if resp.CartOptionsSummary.FallbackApplied {
		eventType = kafka.EventTypeDecisionFallback
	}

	event := kafka.NewDecisionEvent(eventType, resp.DecisionID)
	event.ZipCode = req.Location.ZipCode
	event.StoreID = req.Location.StoreID
	event.URLType = string(resp.CartURLType)
	event.BackupsUsed = resp.BackupsUsed
	event.AllUnavailable = resp.AllProductsUnavailable
	event.GroupCount = len(req.Groups)
	event.FallbackApplied = resp.CartOptionsSummary.FallbackApplied

	if err := s.publisher.PublishEvent(kafka.TopicDecisionEvents, resp.DecisionID, event); err != nil {
		logger.WithError(err).Warn("failed to publish decision event")
	}

	for _, sub := range selection.Substitutions {
		subEvent := kafka.NewSubstitutionEvent(kafka.EventTypeStockSubstituted, resp.DecisionID, string(sub.OriginalID))
		subEvent.ReplacementID = string(sub.ReplacementID)
		subEvent.Reason = string(sub.Reason)
		if err := s.publisher.PublishEvent(kafka.TopicStockEvents, resp.DecisionID, subEvent); err != nil {
			logger.WithError(err).Warn("failed to publish substitution event")
		}
	}

	for _, id := range selection.UnavailableGroups {
		groupEvent := kafka.NewSubstitutionEvent(kafka.EventTypeGroupUnavailable, resp.DecisionID, string(id))
		if err := s.publisher.PublishEvent(kafka.TopicStockEvents, resp.DecisionID, groupEvent); err != nil {
			logger.WithError(err).Warn("failed to publish unavailable-group event")
		}
	}
}

// collectIDs собирает все идентификаторы batch-а: основной товар каждой
// группы плюс все запасные, в порядке обхода групп.
func collectIDs(groups []domain.BackupGroup) []domain.ProductID {
	ids := make([]domain.ProductID, 0, len(groups)*2)
	for _, g := range groups {
		ids = append(ids, g.PrimaryID)
		ids = append(ids, g.BackupIDs...)
	}
	return ids
}
