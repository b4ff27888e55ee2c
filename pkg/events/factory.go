package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freight-platform/booking-service/pkg/tenant"
)

// Factory creates event envelopes for booking domain events
type Factory struct {
	source string
}

// NewFactory creates a new Factory for a specific event source
func NewFactory(source string) *Factory {
	return &Factory{source: source}
}

// NewEnvelope wraps event data in a CloudEvents envelope, pulling tenant and
// correlation attributes from the context when present.
func (f *Factory) NewEnvelope(ctx context.Context, eventType, subject string, data interface{}) *Envelope {
	env := &Envelope{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		TenantID:        tenant.IDFromContext(ctx),
	}
	return env
}

// NewEnvelopeWithCorrelation wraps event data with an explicit correlation ID
func (f *Factory) NewEnvelopeWithCorrelation(ctx context.Context, eventType, subject string, data interface{}, correlationID string) *Envelope {
	env := f.NewEnvelope(ctx, eventType, subject, data)
	env.CorrelationID = correlationID
	return env
}
