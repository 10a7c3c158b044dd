package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Config struct {
	URL      string `json:"url"`
	Exchange string `json:"exchange"`
	Source   string `json:"source"`
}

type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	source   string
	// amqp channels must not be shared between goroutines
	mu sync.Mutex
}

func NewRabbitPublisher(config *Config) (*RabbitPublisher, error) {
	if config.Exchange == "" {
		return nil, fmt.Errorf("no exchange configured")
	}

	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		config.Exchange, // name
		"topic",         // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", config.Exchange, err)
	}

	slog.Info("Connected to RabbitMQ", "exchange", config.Exchange)
	return &RabbitPublisher{
		conn:     conn,
		channel:  channel,
		exchange: config.Exchange,
		source:   config.Source,
	}, nil
}

// Publish sends an event with the event type as routing key.
func (p *RabbitPublisher) Publish(ctx context.Context, eventType string, data any) error {
	event, err := NewEvent(eventType, p.source, data)
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		eventType,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.Time,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Event published", "event_type", eventType, "event_id", event.ID)
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		slog.Warn("Failed to close RabbitMQ channel", "error", err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
