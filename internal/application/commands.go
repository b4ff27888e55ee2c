package application

import (
	"github.com/freight-platform/booking-service/internal/domain"
)

// CreateBookingCommand creates a new booking in draft status
type CreateBookingCommand struct {
	BookingNumber string
	Direction     domain.Direction
	From          *domain.LocationRef
	To            *domain.LocationRef
	VesselID      int64
	VoyageNo      string
	Empty         *domain.RoutingPhase
	Full          *domain.RoutingPhase
}

// UpdateBookingCommand partially updates booking fields. Nil fields are left
// untouched.
type UpdateBookingCommand struct {
	BookingID string
	From      *domain.LocationRef
	To        *domain.LocationRef
	VesselID  *int64
	VoyageNo  *string
	Empty     *domain.RoutingPhase
	Full      *domain.RoutingPhase
}

// TransitionBookingCommand moves a booking to a target lifecycle status
type TransitionBookingCommand struct {
	BookingID string
	Target    domain.BookingStatus
}

// CancelBookingCommand cancels a booking
type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

// DeleteBookingCommand removes a draft or cancelled booking
type DeleteBookingCommand struct {
	BookingID string
}

// UpsertContainerDetailCommand inserts or updates a container detail
type UpsertContainerDetailCommand struct {
	BookingID string
	Detail    domain.ContainerDetail
}

// AdvanceStockAllocationCommand advances a container's allocation stage
type AdvanceStockAllocationCommand struct {
	BookingID         string
	ContainerDetailID string
	TargetStage       domain.AllocationStage
	ProductLines      []domain.ProductLine
}

// ReplaceDriverAllocationCommand stores a phase's transport assignment
type ReplaceDriverAllocationCommand struct {
	BookingID  string
	Allocation domain.DriverAllocation
}

// GenerateRoutingLegsCommand derives routing legs for both phases
type GenerateRoutingLegsCommand struct {
	BookingID string
}
