package events

import (
	"time"
)

// Booking domain event types
const (
	BookingCreated           = "freight.booking.created"
	BookingStatusChanged     = "freight.booking.status-changed"
	BookingCancelled         = "freight.booking.cancelled"
	BookingDeleted           = "freight.booking.deleted"
	ContainerDetailUpserted  = "freight.booking.container-upserted"
	StockAllocationAdvanced  = "freight.booking.allocation-advanced"
	RoutingLegsGenerated     = "freight.booking.routing-legs-generated"
	DriverAllocationReplaced = "freight.booking.driver-allocation-replaced"
)

// Envelope is a CloudEvents v1.0 compliant wrapper for booking domain events
type Envelope struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Extension attributes
	CorrelationID string `json:"freightcorrelationid,omitempty"`
	TenantID      string `json:"freighttenantid,omitempty"`
	BookingID     string `json:"freightbookingid,omitempty"`
	TraceParent   string `json:"traceparent,omitempty"`
}
