package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationRequestEvent asks the worker side of the application to pick up a
// memo generation job. It carries everything the task layer needs without the
// service layer importing task construction directly.
type GenerationRequestEvent struct {
	// ID uniquely identifies this event instance, not the job.
	ID uuid.UUID `json:"id"`

	// Type names the kind of work requested, e.g. memo generation.
	Type string `json:"type"`

	// Payload is the work-specific data serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *GenerationRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewGenerationRequestEvent builds an event of the given type around the
// serialized payload.
func NewGenerationRequestEvent(eventType string, payload interface{}) (*GenerationRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &GenerationRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	// HandleEvent processes the event. An error means the handler could not
	// accept the work, not that the work itself failed.
	HandleEvent(ctx context.Context, event *GenerationRequestEvent) error
}

// EventEmitter publishes events to registered handlers, letting the service
// layer request generation work without knowing who performs it.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *GenerationRequestEvent) error
}
