package redirect

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/domain"
	"github.com/vladislavdragonenkov/redirector/internal/metrics"
)

const defaultPDPBaseURL = "https://shop.example.com/ip"

// Builder выводит финальную цель редиректа из результата подстановки.
// Поверхность редиректа поддерживает только одностраничные цели: при
// нескольких выбранных товарах применяется fallback, как и при нуле.
type Builder struct {
	pdpBaseURL string
	logger     *log.Entry
	metrics    *metrics.PipelineMetrics
}

// NewBuilder создаёт builder с заданной базой PDP-ссылок.
func NewBuilder(pdpBaseURL string, logger *log.Entry) *Builder {
	b := newBuilder(pdpBaseURL, logger)
	b.metrics = metrics.NewPipelineMetrics()
	return b
}

// NewBuilderWithoutMetrics создаёт builder без метрик (для тестов).
func NewBuilderWithoutMetrics(pdpBaseURL string, logger *log.Entry) *Builder {
	return newBuilder(pdpBaseURL, logger)
}

func newBuilder(pdpBaseURL string, logger *log.Entry) *Builder {
	if pdpBaseURL == "" {
		pdpBaseURL = defaultPDPBaseURL
	}
	if logger == nil {
		logger = log.WithField("component", "redirect-builder")
	}
	return &Builder{
		pdpBaseURL: strings.TrimRight(pdpBaseURL, "/"),
		logger:     logger,
	}
}

// Fallback — резервные цели редиректа и разрешение на PDP.
type Fallback struct {
	LongLink  string
	CustomURL string
	AllowPDP  bool
}

// Build выбирает цель по правилам, в порядке: пустой выбор → fallback;
// ровно один товар и PDP разрешён → страница товара; иначе fallback.
// Инвариант: Summary.FallbackApplied истинно ровно когда тип не pdp.
func (b *Builder) Build(selection domain.SelectionResult, fb Fallback) domain.RedirectDecision {
	mode := "pdp"
	if !fb.AllowPDP {
		mode = "linkOnly"
	}

	var (
		target  string
		urlType domain.URLType
	)

	switch {
	case len(selection.SelectedProducts) == 1 && fb.AllowPDP:
		id := selection.SelectedProducts[0].ProductID
		target = fmt.Sprintf("%s/%s", b.pdpBaseURL, id)
		urlType = domain.URLTypePDP
	case fb.CustomURL != "":
		target = fb.CustomURL
		urlType = domain.URLTypeCustom
	default:
		target = fb.LongLink
		urlType = domain.URLTypeLongLink
	}

	fallbackApplied := urlType != domain.URLTypePDP
	if fallbackApplied {
		if b.metrics != nil {
			b.metrics.RecordFallback(string(urlType))
		}
		b.logger.WithFields(log.Fields{
			"url_type": urlType,
			"selected": len(selection.SelectedProducts),
		}).Debug("redirect fell back to a non-PDP target")
	}

	return domain.RedirectDecision{
		RedirectURL: target,
		URLType:     urlType,
		Summary: domain.OptionsSummary{
			Mode:            mode,
			IncludeStoreID:  "never",
			FallbackApplied: fallbackApplied,
			FinalType:       string(urlType),
		},
	}
}
