package webhook

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// UnknownEventType is recorded when a payload names no event type.
const UnknownEventType = "UNKNOWN"

// Event is one received callback.
type Event struct {
	ID         string         `json:"id" bson:"_id"`
	EventType  string         `json:"event_type" bson:"event_type"`
	ReceivedAt time.Time      `json:"received_at" bson:"received_at"`
	Payload    map[string]any `json:"payload" bson:"payload"`
}

// ParseEvent decodes a callback body. The event type is read from
// eventType, then hook.event, then event.
func ParseEvent(body []byte, now time.Time) (Event, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "event body is not a JSON object")
	}
	if payload == nil {
		return Event{}, errors.New(errors.ErrCodeInvalidInput, "event body is empty")
	}
	return Event{
		ID:         uuid.NewString(),
		EventType:  eventType(payload),
		ReceivedAt: now.UTC(),
		Payload:    payload,
	}, nil
}

func eventType(payload map[string]any) string {
	if s, ok := payload["eventType"].(string); ok && s != "" {
		return s
	}
	if hook, ok := payload["hook"].(map[string]any); ok {
		if s, ok := hook["event"].(string); ok && s != "" {
			return s
		}
	}
	if s, ok := payload["event"].(string); ok && s != "" {
		return s
	}
	return UnknownEventType
}

// Summary returns a short description of the event subject, if any.
func (e Event) Summary() string {
	for _, obj := range []any{e.Payload["payload"], e.Payload["data"], e.Payload} {
		m, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range []string{"name", "milestoneName", "componentName", "description"} {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
