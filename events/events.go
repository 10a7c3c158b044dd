// Package events publishes scan results to RabbitMQ for the collaborators
// that continue after a successful MRZ scan, such as the chip reader.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const ScanAccepted = "mrz.scan.accepted"

type Event struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

func NewEvent(eventType, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return &Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		Source: source,
		Time:   time.Now().UTC(),
		Data:   payload,
	}, nil
}

// Should be safe to use concurrently
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close() error
}

// NoopPublisher drops events. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, eventType string, _ any) error {
	slog.Debug("No event broker configured, dropping event", "event_type", eventType)
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
