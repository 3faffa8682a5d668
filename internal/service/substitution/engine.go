package substitution

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/metrics"
)

// Engine применяет детерминированный алгоритм подстановки к группам
// primary/backup. Состояния у движка нет: результат — чистая функция
// от списка групп и карты наличия.
type Engine struct {
	logger  *log.Entry
	metrics *metrics.PipelineMetrics
}

// NewEngine создаёт рабочий экземпляр движка подстановки.
func NewEngine(logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.WithField("component", "substitution-engine")
	}
	return &Engine{
		logger:  logger,
		metrics: metrics.NewPipelineMetrics(),
	}
}

// NewEngineWithoutMetrics создаёт движок без метрик (для тестов).
func NewEngineWithoutMetrics(logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.WithField("component", "substitution-engine")
	}
	return &Engine{logger: logger}
}

// Select обходит группы в порядке входа. Если primary проходит предикат
// "доступен и пригоден" — выбирается он; иначе берётся первый подходящий
// backup в порядке списка (short-circuit: остальные не оцениваются).
// Группа без подходящего кандидата попадает в UnavailableGroups.
// Инвариант: выбранных плюс недоступных ровно столько, сколько групп.
func (e *Engine) Select(groups []domain.BackupGroup, availability map[domain.ProductID]domain.ProductAvailability) domain.SelectionResult {
	result := domain.SelectionResult{
		SelectedProducts:  make([]domain.SelectedProduct, 0, len(groups)),
		Substitutions:     make([]domain.SubstitutionRecord, 0),
		UnavailableGroups: make([]domain.ProductID, 0),
	}

	for _, group := range groups {
		primary := domain.NormalizeProductID(string(group.PrimaryID))

		primaryRec, primaryKnown := availability[primary]
		if primaryKnown && primaryRec.Usable() {
			result.SelectedProducts = append(result.SelectedProducts, domain.SelectedProduct{
				ProductID:    primary,
				Availability: primaryRec,
			})
			continue
		}

		// Причина фиксируется по состоянию primary: локации были, но товара
		// нет — OUT_OF_STOCK; записи нет или она синтетическая (ошибка
		// поиска, пустой список локаций) — PRIMARY_UNUSABLE.
		reason := domain.ReasonOutOfStock
		if !primaryKnown || !primaryRec.Resolved {
			reason = domain.ReasonPrimaryUnusable
		}

		replaced := false
		for _, rawBackup := range group.BackupIDs {
			backup := domain.NormalizeProductID(string(rawBackup))
			backupRec, ok := availability[backup]
			if !ok || !backupRec.Usable() {
				continue
			}

			result.SelectedProducts = append(result.SelectedProducts, domain.SelectedProduct{
				ProductID:    backup,
				Availability: backupRec,
			})
			result.Substitutions = append(result.Substitutions, domain.SubstitutionRecord{
				OriginalID:    primary,
				ReplacementID: backup,
				Reason:        reason,
			})

			if e.metrics != nil {
				e.metrics.RecordSubstitution(string(reason))
			}
			e.logger.WithFields(log.Fields{
				"original_id":    primary,
				"replacement_id": backup,
				"reason":         reason,
			}).Info("primary product substituted")

			replaced = true
			break
		}

		if !replaced {
			result.UnavailableGroups = append(result.UnavailableGroups, primary)
			if e.metrics != nil {
				e.metrics.RecordUnavailableGroup()
			}
			e.logger.WithField("primary_id", primary).Info("no usable candidate in backup group")
		}
	}

	return result
}
