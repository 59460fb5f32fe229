package types

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// Envelope is the normalized shape every analytics handler receives. The
// worker builds it from the Pub/Sub message attributes plus the domain
// event's payload envelope, so handlers never touch raw broker messages.
type Envelope struct {
	EventID       string                    `json:"event_id"`
	EventType     enums.AnalyticsEventType  `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   string                    `json:"aggregate_id"`
	OccurredAt    time.Time                 `json:"occurred_at"`
	Payload       json.RawMessage           `json:"payload"`
}

// PayloadMap decodes the payload into a map. An absent or blank payload
// yields an empty map rather than nil so handlers can index it directly.
func (e Envelope) PayloadMap() (map[string]any, error) {
	if len(bytes.TrimSpace(e.Payload)) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(e.Payload, &out); err != nil {
		return nil, err
	}
	if out == nil {
		// JSON null decodes to a nil map.
		out = map[string]any{}
	}
	return out, nil
}
