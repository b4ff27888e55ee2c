package kafka

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/freight-platform/booking-service/pkg/events"
)

// BreakerProducer wraps a Producer with a circuit breaker so broker
// outages fail fast instead of stalling request handlers.
type BreakerProducer struct {
	producer *Producer
	breaker  *gobreaker.CircuitBreaker
}

// NewBreakerProducer creates a producer protected by a circuit breaker
func NewBreakerProducer(producer *Producer, onStateChange func(name string, from, to gobreaker.State)) *BreakerProducer {
	settings := gobreaker.Settings{
		Name:        "kafka-producer",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: onStateChange,
	}

	return &BreakerProducer{
		producer: producer,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

// PublishEvent publishes an envelope through the circuit breaker
func (b *BreakerProducer) PublishEvent(ctx context.Context, topic string, env *events.Envelope) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.producer.PublishEvent(ctx, topic, env)
	})
	return err
}

// PublishBatch publishes a batch of envelopes through the circuit breaker
func (b *BreakerProducer) PublishBatch(ctx context.Context, topic string, envs []*events.Envelope) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.producer.PublishBatch(ctx, topic, envs)
	})
	return err
}

// State returns the current breaker state
func (b *BreakerProducer) State() gobreaker.State {
	return b.breaker.State()
}

// Close closes the underlying producer
func (b *BreakerProducer) Close() error {
	return b.producer.Close()
}
