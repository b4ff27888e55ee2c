package domain

import "time"

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// BookingCreatedEvent is emitted when a booking is created
type BookingCreatedEvent struct {
	BookingID     string    `json:"bookingId"`
	BookingNumber string    `json:"bookingNumber"`
	Direction     Direction `json:"direction"`
	OccurredAt_   time.Time `json:"occurredAt"`
}

func (e *BookingCreatedEvent) EventType() string     { return "freight.booking.created" }
func (e *BookingCreatedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// BookingStatusChangedEvent is emitted on each lifecycle transition
type BookingStatusChangedEvent struct {
	BookingID   string        `json:"bookingId"`
	From        BookingStatus `json:"from"`
	To          BookingStatus `json:"to"`
	OccurredAt_ time.Time     `json:"occurredAt"`
}

func (e *BookingStatusChangedEvent) EventType() string     { return "freight.booking.status-changed" }
func (e *BookingStatusChangedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// BookingCancelledEvent is emitted when a booking is cancelled
type BookingCancelledEvent struct {
	BookingID   string    `json:"bookingId"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt_ time.Time `json:"occurredAt"`
}

func (e *BookingCancelledEvent) EventType() string     { return "freight.booking.cancelled" }
func (e *BookingCancelledEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// BookingDeletedEvent is emitted when a draft or cancelled booking is removed
type BookingDeletedEvent struct {
	BookingID   string        `json:"bookingId"`
	Status      BookingStatus `json:"status"`
	OccurredAt_ time.Time     `json:"occurredAt"`
}

func (e *BookingDeletedEvent) EventType() string     { return "freight.booking.deleted" }
func (e *BookingDeletedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// ContainerDetailUpsertedEvent is emitted when a container detail is written
type ContainerDetailUpsertedEvent struct {
	BookingID         string    `json:"bookingId"`
	ContainerDetailID string    `json:"containerDetailId"`
	ContainerNumber   string    `json:"containerNumber"`
	OccurredAt_       time.Time `json:"occurredAt"`
}

func (e *ContainerDetailUpsertedEvent) EventType() string {
	return "freight.booking.container-upserted"
}
func (e *ContainerDetailUpsertedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// StockAllocationAdvancedEvent is emitted when an allocation changes stage
type StockAllocationAdvancedEvent struct {
	BookingID         string          `json:"bookingId"`
	ContainerDetailID string          `json:"containerDetailId"`
	Direction         Direction       `json:"direction"`
	Stage             AllocationStage `json:"stage"`
	OccurredAt_       time.Time       `json:"occurredAt"`
}

func (e *StockAllocationAdvancedEvent) EventType() string {
	return "freight.booking.allocation-advanced"
}
func (e *StockAllocationAdvancedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// RoutingLegsGeneratedEvent is emitted the first time legs are derived
type RoutingLegsGeneratedEvent struct {
	BookingID   string    `json:"bookingId"`
	Direction   Direction `json:"direction"`
	EmptyLegs   int       `json:"emptyLegs"`
	FullLegs    int       `json:"fullLegs"`
	OccurredAt_ time.Time `json:"occurredAt"`
}

func (e *RoutingLegsGeneratedEvent) EventType() string {
	return "freight.booking.routing-legs-generated"
}
func (e *RoutingLegsGeneratedEvent) OccurredAt() time.Time { return e.OccurredAt_ }

// DriverAllocationReplacedEvent is emitted when a phase's transport
// assignment is written
type DriverAllocationReplacedEvent struct {
	BookingID   string           `json:"bookingId"`
	Phase       RoutingPhaseName `json:"phase"`
	VehicleID   int64            `json:"vehicleId,omitempty"`
	DriverID    int64            `json:"driverId,omitempty"`
	OccurredAt_ time.Time        `json:"occurredAt"`
}

func (e *DriverAllocationReplacedEvent) EventType() string {
	return "freight.booking.driver-allocation-replaced"
}
func (e *DriverAllocationReplacedEvent) OccurredAt() time.Time { return e.OccurredAt_ }
