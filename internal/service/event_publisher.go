package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/kafka"
	"github.com/google/uuid"
)

// EventPublisher defines the interface for publishing booking lifecycle events
type EventPublisher interface {
	// PublishBookingRequested publishes a booking requested event
	PublishBookingRequested(ctx context.Context, booking *domain.Booking) error

	// PublishBookingCancelled publishes a booking cancelled event
	PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error

	// PublishBookingRejected publishes a rejected booking attempt
	PublishBookingRejected(ctx context.Context, amenityID, userID string, reason domain.RejectReason) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "amenity-booking-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "amenity-scheduler"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "amenity-scheduler-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishBookingRequested publishes a booking requested event
func (p *KafkaEventPublisher) PublishBookingRequested(ctx context.Context, booking *domain.Booking) error {
	event := domain.NewBookingEvent(domain.BookingEventRequested, booking, uuid.New().String())
	return p.publishEvent(ctx, event)
}

// PublishBookingCancelled publishes a booking cancelled event
func (p *KafkaEventPublisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	event := domain.NewBookingEvent(domain.BookingEventCancelled, booking, uuid.New().String())
	return p.publishEvent(ctx, event)
}

// PublishBookingRejected publishes a rejected booking attempt
func (p *KafkaEventPublisher) PublishBookingRejected(ctx context.Context, amenityID, userID string, reason domain.RejectReason) error {
	event := domain.NewRejectionEvent(amenityID, userID, reason, uuid.New().String())
	return p.publishEvent(ctx, event)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes a booking event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, event *domain.BookingEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(event.EventType),
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:   p.topic,
		Key:     event.Key(),
		Value:   value,
		Headers: headers,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher. It keeps the
// service usable when Kafka is unavailable or disabled.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishBookingRequested is a no-op
func (p *NoOpEventPublisher) PublishBookingRequested(ctx context.Context, booking *domain.Booking) error {
	return nil
}

// PublishBookingCancelled is a no-op
func (p *NoOpEventPublisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	return nil
}

// PublishBookingRejected is a no-op
func (p *NoOpEventPublisher) PublishBookingRejected(ctx context.Context, amenityID, userID string, reason domain.RejectReason) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
