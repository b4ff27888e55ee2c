package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/freight-platform/booking-service/internal/domain"
	"github.com/freight-platform/booking-service/pkg/events"
	pkgkafka "github.com/freight-platform/booking-service/pkg/kafka"
	"github.com/freight-platform/booking-service/pkg/logging"
	"github.com/freight-platform/booking-service/pkg/metrics"
)

// Publisher abstracts the underlying Kafka producer so the event publisher
// works with either the raw producer or the breaker-wrapped one.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, env *events.Envelope) error
	PublishBatch(ctx context.Context, topic string, envs []*events.Envelope) error
}

// EventPublisher publishes booking domain events to Kafka as CloudEvents
type EventPublisher struct {
	producer Publisher
	factory  *events.Factory
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewEventPublisher creates an EventPublisher
func NewEventPublisher(producer Publisher, factory *events.Factory, logger *logging.Logger, m *metrics.Metrics) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		factory:  factory,
		logger:   logger.WithComponent("kafka-event-publisher"),
		metrics:  m,
	}
}

// Publish wraps a domain event in an envelope and publishes it to the
// topic for its event family.
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	env, topic := p.envelope(ctx, event)

	start := time.Now()
	err := p.producer.PublishEvent(ctx, topic, env)
	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.EventType(), err == nil, elapsed)
	}
	if err != nil {
		return fmt.Errorf("publishing %s to %s: %w", event.EventType(), topic, err)
	}

	p.logger.KafkaPublish(ctx, topic, event.EventType(), true, elapsed)
	return nil
}

// PublishAll publishes a batch of domain events, grouping them per topic
// so ordering within a topic is preserved.
func (p *EventPublisher) PublishAll(ctx context.Context, domainEvents []domain.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	byTopic := make(map[string][]*events.Envelope)
	for _, event := range domainEvents {
		env, topic := p.envelope(ctx, event)
		byTopic[topic] = append(byTopic[topic], env)
	}

	for topic, envs := range byTopic {
		start := time.Now()
		err := p.producer.PublishBatch(ctx, topic, envs)
		elapsed := time.Since(start)
		if p.metrics != nil {
			for _, env := range envs {
				p.metrics.RecordKafkaPublish(topic, env.Type, err == nil, elapsed)
			}
		}
		if err != nil {
			return fmt.Errorf("publishing batch of %d to %s: %w", len(envs), topic, err)
		}
	}
	return nil
}

// envelope builds the CloudEvents envelope for a domain event and picks
// the destination topic. Routing and allocation events go on their own
// topics, everything else is a booking lifecycle event.
func (p *EventPublisher) envelope(ctx context.Context, event domain.DomainEvent) (*events.Envelope, string) {
	bookingID, topic := routeEvent(event)

	env := p.factory.NewEnvelope(ctx, event.EventType(), "booking/"+bookingID, event)
	env.Time = event.OccurredAt()
	env.BookingID = bookingID
	if v, ok := ctx.Value(logging.CorrelationIDKey).(string); ok {
		env.CorrelationID = v
	}
	return env, topic
}

func routeEvent(event domain.DomainEvent) (bookingID, topic string) {
	switch e := event.(type) {
	case *domain.BookingCreatedEvent:
		return e.BookingID, pkgkafka.Topics.BookingEvents
	case *domain.BookingStatusChangedEvent:
		return e.BookingID, pkgkafka.Topics.BookingEvents
	case *domain.BookingCancelledEvent:
		return e.BookingID, pkgkafka.Topics.BookingEvents
	case *domain.BookingDeletedEvent:
		return e.BookingID, pkgkafka.Topics.BookingEvents
	case *domain.ContainerDetailUpsertedEvent:
		return e.BookingID, pkgkafka.Topics.BookingEvents
	case *domain.StockAllocationAdvancedEvent:
		return e.BookingID, pkgkafka.Topics.AllocationEvents
	case *domain.RoutingLegsGeneratedEvent:
		return e.BookingID, pkgkafka.Topics.RoutingEvents
	case *domain.DriverAllocationReplacedEvent:
		return e.BookingID, pkgkafka.Topics.RoutingEvents
	default:
		return "", pkgkafka.Topics.BookingEvents
	}
}
