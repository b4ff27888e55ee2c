package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/freight-platform/booking-service/pkg/events"
)

// Producer publishes event envelopes to Kafka topics
type Producer struct {
	writers map[string]*kafka.Writer
	config  *Config
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
	}
}

func (p *Producer) getWriter(topic string) *kafka.Writer {
	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}

	p.writers[topic] = writer
	return writer
}

func envelopeMessage(env *events.Envelope) (kafka.Message, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(env.Subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "ce-specversion", Value: []byte(env.SpecVersion)},
			{Key: "ce-type", Value: []byte(env.Type)},
			{Key: "ce-source", Value: []byte(env.Source)},
			{Key: "ce-id", Value: []byte(env.ID)},
			{Key: "ce-time", Value: []byte(env.Time.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte(env.DataContentType)},
		},
		Time: env.Time,
	}

	if env.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-freightcorrelationid", Value: []byte(env.CorrelationID)})
	}
	if env.TenantID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-freighttenantid", Value: []byte(env.TenantID)})
	}
	if env.BookingID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-freightbookingid", Value: []byte(env.BookingID)})
	}
	if env.TraceParent != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-traceparent", Value: []byte(env.TraceParent)})
	}

	return msg, nil
}

// PublishEvent publishes a single envelope to the specified topic
func (p *Producer) PublishEvent(ctx context.Context, topic string, env *events.Envelope) error {
	msg, err := envelopeMessage(env)
	if err != nil {
		return err
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", topic, err)
	}
	return nil
}

// PublishBatch publishes multiple envelopes to a topic
func (p *Producer) PublishBatch(ctx context.Context, topic string, envs []*events.Envelope) error {
	messages := make([]kafka.Message, 0, len(envs))
	for _, env := range envs {
		msg, err := envelopeMessage(env)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}

	if err := p.getWriter(topic).WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish batch to topic %s: %w", topic, err)
	}
	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
