package kafka

import "time"

// EventType определяет тип события решения
type EventType string

const (
	// События финального решения
	EventTypeDecisionResolved EventType = "decision.resolved"
	EventTypeDecisionFallback EventType = "decision.fallback"

	// События подстановки
	EventTypeStockSubstituted EventType = "stock.substituted"
	EventTypeGroupUnavailable EventType = "group.unavailable"
)

// Topics для Kafka
const (
	TopicDecisionEvents = "redirector.decision.events"
	TopicStockEvents    = "redirector.stock.events"
)

// DecisionEvent описывает одно принятое решение о редиректе.
type DecisionEvent struct {
	Type            EventType `json:"type"`
	DecisionID      string    `json:"decision_id"`
	ZipCode         string    `json:"zip_code"`
	StoreID         string    `json:"store_id,omitempty"`
	URLType         string    `json:"url_type"`
	BackupsUsed     bool      `json:"backups_used"`
	AllUnavailable  bool      `json:"all_unavailable"`
	GroupCount      int       `json:"group_count"`
	FallbackApplied bool      `json:"fallback_applied"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewDecisionEvent создаёт событие решения с текущим временем.
func NewDecisionEvent(eventType EventType, decisionID string) DecisionEvent {
	return DecisionEvent{
		Type:       eventType,
		DecisionID: decisionID,
		Timestamp:  time.Now().UTC(),
	}
}

// SubstitutionEvent описывает одну подстановку backup-товара.
type SubstitutionEvent struct {
	Type          EventType `json:"type"`
	DecisionID    string    `json:"decision_id"`
	OriginalID    string    `json:"original_id"`
	ReplacementID string    `json:"replacement_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewSubstitutionEvent создаёт событие подстановки с текущим временем.
func NewSubstitutionEvent(eventType EventType, decisionID, originalID string) SubstitutionEvent {
	return SubstitutionEvent{
		Type:       eventType,
		DecisionID: decisionID,
		OriginalID: originalID,
		Timestamp:  time.Now().UTC(),
	}
}
