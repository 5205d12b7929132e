package outbox

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
// The inner Data stays opaque so the publisher never has to understand
// individual event schemas.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// NewPayloadEnvelope wraps an event body with a fresh event id.
func NewPayloadEnvelope(version int, occurredAt time.Time, data json.RawMessage) PayloadEnvelope {
	return PayloadEnvelope{
		Version:    version,
		EventID:    uuid.NewString(),
		OccurredAt: occurredAt,
		Data:       data,
	}
}

// DecodePayloadEnvelope parses a stored payload and rejects envelopes that
// lack an event id, since downstream deduplication keys on it.
func DecodePayloadEnvelope(payload json.RawMessage) (PayloadEnvelope, error) {
	var envelope PayloadEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return PayloadEnvelope{}, err
	}
	if envelope.EventID == "" {
		return PayloadEnvelope{}, errors.New("payload envelope missing event id")
	}
	return envelope, nil
}
