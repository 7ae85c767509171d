package webhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is a verified webhook event handed to business handlers.
type Event struct {
	DeliveryID     string
	TransmissionID string
	Type           string
	Payload        json.RawMessage
}

// Dispatcher routes verified events to business handlers. Routing by event
// type lives behind this interface; the broker itself only guarantees that
// nothing unverified ever reaches a dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt Event) error
}

// LogDispatcher acknowledges verified events in the log. It stands in until
// real business handlers are registered.
type LogDispatcher struct {
	Logger zerolog.Logger
}

// Dispatch implements Dispatcher.
func (d LogDispatcher) Dispatch(_ context.Context, evt Event) error {
	d.Logger.Info().
		Str("delivery_id", evt.DeliveryID).
		Str("transmission_id", evt.TransmissionID).
		Str("event_type", evt.Type).
		Msg("webhook event verified")
	return nil
}

// NewEvent wraps a verified payload, tagging it with a fresh delivery id.
func NewEvent(transmissionID string, payload json.RawMessage) Event {
	var probe struct {
		EventType string `json:"event_type"`
	}
	_ = json.Unmarshal(payload, &probe)
	return Event{
		DeliveryID:     uuid.NewString(),
		TransmissionID: transmissionID,
		Type:           probe.EventType,
		Payload:        payload,
	}
}
