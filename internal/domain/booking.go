package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking errors
var (
	ErrBookingNotFound           = errors.New("booking not found")
	ErrInvalidDirection          = errors.New("direction must be import or export")
	ErrIllegalStatusTransition   = errors.New("illegal booking status transition")
	ErrBookingLocked             = errors.New("booking is locked in a terminal status")
	ErrBookingNotDeletable       = errors.New("booking can only be deleted from draft or cancelled")
	ErrContainerDetailNotFound   = errors.New("container detail not found")
	ErrContainerDetailFrozen     = errors.New("container detail is frozen by a terminal-stage allocation")
	ErrTareNotBelowGross         = errors.New("tare weight must be below gross weight")
	ErrStageNotLater             = errors.New("target stage must be later than the current stage")
	ErrQuantityExceedsPriorStage = errors.New("quantity exceeds the figure recorded at the prior stage")
	ErrDiscontinuousLegChain     = errors.New("leg chain is not contiguous")
	ErrInvalidRoutingPhase       = errors.New("routing phase must be empty or full")
	ErrConcurrentModification    = errors.New("booking was modified concurrently")
)

// Direction distinguishes import and export bookings
type Direction string

const (
	DirectionImport Direction = "import"
	DirectionExport Direction = "export"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionImport || d == DirectionExport
}

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusDraft      BookingStatus = "draft"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to another status.
// The forward path is single-step; cancellation is legal from every
// non-terminal state.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	validTransitions := map[BookingStatus][]BookingStatus{
		StatusDraft:      {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusInProgress, StatusCancelled},
		StatusInProgress: {StatusCompleted, StatusCancelled},
		StatusCompleted:  {},
		StatusCancelled:  {},
	}

	allowedTargets, exists := validTransitions[s]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if target == allowed {
			return true
		}
	}
	return false
}

// Next returns the single forward-progress successor, or "" when terminal
func (s BookingStatus) Next() BookingStatus {
	switch s {
	case StatusDraft:
		return StatusConfirmed
	case StatusConfirmed:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return ""
	}
}

// ContainerDetail describes one physical container on a booking
type ContainerDetail struct {
	ID              string  `bson:"id" json:"id"`
	ContainerNumber string  `bson:"containerNumber" json:"containerNumber"`
	SizeID          int64   `bson:"sizeId,omitempty" json:"sizeId,omitempty"`
	WarehouseID     int64   `bson:"warehouseId,omitempty" json:"warehouseId,omitempty"`
	WeightGross     float64 `bson:"weightGross,omitempty" json:"weightGross,omitempty"`
	WeightTare      float64 `bson:"weightTare,omitempty" json:"weightTare,omitempty"`
	WeightNet       float64 `bson:"weightNet,omitempty" json:"weightNet,omitempty"`

	// StockAllocation is the zero-or-one allocation record owned by this
	// container detail.
	StockAllocation *StockAllocation `bson:"stockAllocation,omitempty" json:"stockAllocation,omitempty"`
}

// normalizeWeights derives the net weight and enforces the tare/gross rule
func (c *ContainerDetail) normalizeWeights() error {
	if c.WeightGross > 0 && c.WeightTare > 0 {
		if c.WeightTare >= c.WeightGross {
			return ErrTareNotBelowGross
		}
		c.WeightNet = c.WeightGross - c.WeightTare
	}
	return nil
}

// IsFrozen reports whether the detail is referenced by a terminal-stage
// allocation and therefore immutable.
func (c *ContainerDetail) IsFrozen() bool {
	return c.StockAllocation != nil && c.StockAllocation.IsTerminal()
}

// Booking is the aggregate root for the container booking bounded context
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BookingID     string             `bson:"bookingId" json:"bookingId"`
	TenantID      string             `bson:"tenantId" json:"tenantId"`
	BookingNumber string             `bson:"bookingNumber" json:"bookingNumber"`
	Direction     Direction          `bson:"direction" json:"direction"`
	Status        BookingStatus      `bson:"status" json:"status"`

	// From and To are the booking's overall endpoints, the anchor points
	// for routing leg derivation.
	From *LocationRef `bson:"from,omitempty" json:"from,omitempty"`
	To   *LocationRef `bson:"to,omitempty" json:"to,omitempty"`

	VesselID int64  `bson:"vesselId,omitempty" json:"vesselId,omitempty"`
	VoyageNo string `bson:"voyageNo,omitempty" json:"voyageNo,omitempty"`

	Routing           Routing            `bson:"routing" json:"routing"`
	ContainerDetails  []ContainerDetail  `bson:"containerDetails" json:"containerDetails"`
	DriverAllocations []DriverAllocation `bson:"driverAllocations" json:"driverAllocations"`

	CancelReason string `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`

	// Version backs optimistic concurrency on non-status writes
	Version int64 `bson:"version" json:"version"`

	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`

	DomainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewBooking creates a new Booking aggregate in draft status
func NewBooking(bookingID, tenantID, bookingNumber string, direction Direction, from, to *LocationRef) (*Booking, error) {
	if !direction.IsValid() {
		return nil, ErrInvalidDirection
	}

	now := time.Now().UTC()
	booking := &Booking{
		ID:                primitive.NewObjectID(),
		BookingID:         bookingID,
		TenantID:          tenantID,
		BookingNumber:     bookingNumber,
		Direction:         direction,
		Status:            StatusDraft,
		From:              from,
		To:                to,
		ContainerDetails:  make([]ContainerDetail, 0),
		DriverAllocations: make([]DriverAllocation, 0),
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
		DomainEvents:      make([]DomainEvent, 0),
	}

	booking.addDomainEvent(&BookingCreatedEvent{
		BookingID:     bookingID,
		BookingNumber: bookingNumber,
		Direction:     direction,
		OccurredAt_:   now,
	})

	return booking, nil
}

// ensureMutable rejects writes on terminal-status bookings
func (b *Booking) ensureMutable() error {
	if b.Status.IsTerminal() {
		return ErrBookingLocked
	}
	return nil
}

// TransitionTo moves the booking to the target status
func (b *Booking) TransitionTo(target BookingStatus) error {
	if !target.IsValid() {
		return ErrIllegalStatusTransition
	}
	if !b.Status.CanTransitionTo(target) {
		return ErrIllegalStatusTransition
	}

	previous := b.Status
	now := time.Now().UTC()
	b.Status = target
	b.UpdatedAt = now

	switch target {
	case StatusConfirmed:
		b.ConfirmedAt = &now
	case StatusCompleted:
		b.CompletedAt = &now
	case StatusCancelled:
		b.CancelledAt = &now
	}

	b.addDomainEvent(&BookingStatusChangedEvent{
		BookingID:   b.BookingID,
		From:        previous,
		To:          target,
		OccurredAt_: now,
	})

	return nil
}

// Cancel cancels the booking with a reason
func (b *Booking) Cancel(reason string) error {
	if err := b.TransitionTo(StatusCancelled); err != nil {
		return err
	}
	b.CancelReason = reason

	b.addDomainEvent(&BookingCancelledEvent{
		BookingID:   b.BookingID,
		Reason:      reason,
		OccurredAt_: time.Now().UTC(),
	})
	return nil
}

// CanDelete reports whether the booking may be removed
func (b *Booking) CanDelete() bool {
	return b.Status == StatusDraft || b.Status == StatusCancelled
}

// UpdateEndpoints replaces the booking's overall endpoints and re-derives
// routing legs when the routing step has not produced any yet.
func (b *Booking) UpdateEndpoints(from, to *LocationRef) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}

	if from != nil {
		b.From = from
	}
	if to != nil {
		b.To = to
	}
	b.UpdatedAt = time.Now().UTC()

	return b.GenerateRoutingLegs()
}

// UpdateRoutingPhase replaces one phase's sparse specification. A request
// carrying its own leg chain pins that chain; otherwise the stored chain is
// kept and legs are re-derived where the idempotence guard allows.
func (b *Booking) UpdateRoutingPhase(name RoutingPhaseName, phase RoutingPhase) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if !name.IsValid() {
		return ErrInvalidRoutingPhase
	}

	var stored *RoutingPhase
	switch name {
	case PhaseEmpty:
		stored = &b.Routing.Empty
	case PhaseFull:
		stored = &b.Routing.Full
	}

	if len(phase.Legs) > 0 {
		if err := validateChain(phase.Legs); err != nil {
			return err
		}
		phase.LegsDerived = false
		*stored = phase
	} else {
		phase.Legs = stored.Legs
		phase.LegsDerived = stored.LegsDerived
		*stored = phase
	}
	b.UpdatedAt = time.Now().UTC()

	return b.GenerateRoutingLegs()
}

// GenerateRoutingLegs derives leg chains for both routing phases. Existing
// chains are authoritative and left untouched.
func (b *Booking) GenerateRoutingLegs() error {
	if err := b.ensureMutable(); err != nil {
		return err
	}

	hadLegs := b.Routing.Empty.HasLegs() || b.Routing.Full.HasLegs()

	if err := b.Routing.GenerateLegs(b.From, b.To); err != nil {
		return err
	}

	if !hadLegs && (b.Routing.Empty.HasLegs() || b.Routing.Full.HasLegs()) {
		b.addDomainEvent(&RoutingLegsGeneratedEvent{
			BookingID:   b.BookingID,
			Direction:   b.Direction,
			EmptyLegs:   len(b.Routing.Empty.Legs),
			FullLegs:    len(b.Routing.Full.Legs),
			OccurredAt_: time.Now().UTC(),
		})
	}

	return nil
}

// OrderedLegs returns the directionally ordered leg chain for the booking
func (b *Booking) OrderedLegs() []Leg {
	return b.Routing.OrderedLegs(b.Direction)
}

// GetContainerDetail returns a container detail by id
func (b *Booking) GetContainerDetail(id string) *ContainerDetail {
	for i := range b.ContainerDetails {
		if b.ContainerDetails[i].ID == id {
			return &b.ContainerDetails[i]
		}
	}
	return nil
}

// UpsertContainerDetail inserts or updates a container detail, preserving
// any existing allocation record. A detail frozen by a terminal-stage
// allocation rejects updates.
func (b *Booking) UpsertContainerDetail(detail ContainerDetail) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if err := detail.normalizeWeights(); err != nil {
		return err
	}

	now := time.Now().UTC()

	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}

	existing := b.GetContainerDetail(detail.ID)
	if existing != nil {
		if existing.IsFrozen() {
			return ErrContainerDetailFrozen
		}
		detail.StockAllocation = existing.StockAllocation
		*existing = detail
	} else {
		b.ContainerDetails = append(b.ContainerDetails, detail)
	}
	b.UpdatedAt = now

	b.addDomainEvent(&ContainerDetailUpsertedEvent{
		BookingID:         b.BookingID,
		ContainerDetailID: detail.ID,
		ContainerNumber:   detail.ContainerNumber,
		OccurredAt_:       now,
	})

	return nil
}

// AdvanceStockAllocation moves a container detail's allocation to the target
// stage, creating the allocation record at the direction's first stage on
// first use.
func (b *Booking) AdvanceStockAllocation(containerDetailID string, targetStage AllocationStage, lines []ProductLine) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}

	detail := b.GetContainerDetail(containerDetailID)
	if detail == nil {
		return ErrContainerDetailNotFound
	}

	if detail.StockAllocation == nil {
		alloc, err := NewStockAllocation(containerDetailID, b.Direction, lines)
		if err != nil {
			return err
		}
		detail.StockAllocation = alloc
		if targetStage == alloc.Stage {
			b.UpdatedAt = time.Now().UTC()
			return nil
		}
	}

	if err := detail.StockAllocation.Advance(targetStage, lines); err != nil {
		return err
	}

	now := time.Now().UTC()
	b.UpdatedAt = now

	b.addDomainEvent(&StockAllocationAdvancedEvent{
		BookingID:         b.BookingID,
		ContainerDetailID: containerDetailID,
		Direction:         b.Direction,
		Stage:             detail.StockAllocation.Stage,
		OccurredAt_:       now,
	})

	return nil
}

// GetDriverAllocation returns the driver allocation for a phase
func (b *Booking) GetDriverAllocation(phase RoutingPhaseName) *DriverAllocation {
	for i := range b.DriverAllocations {
		if b.DriverAllocations[i].Phase == phase {
			return &b.DriverAllocations[i]
		}
	}
	return nil
}

// ReplaceDriverAllocation stores the transport assignment for a phase. Legs
// are seeded from the routing chain only while the allocation has none; an
// existing (possibly hand-edited) chain is never silently overwritten.
func (b *Booking) ReplaceDriverAllocation(allocation DriverAllocation) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if !allocation.Phase.IsValid() {
		return ErrInvalidRoutingPhase
	}

	existing := b.GetDriverAllocation(allocation.Phase)

	if len(allocation.Legs) == 0 {
		if existing != nil && len(existing.Legs) > 0 {
			allocation.Legs = existing.Legs
		} else {
			allocation.Legs = b.routingLegsFor(allocation.Phase)
		}
	}

	now := time.Now().UTC()
	if existing != nil {
		*existing = allocation
	} else {
		b.DriverAllocations = append(b.DriverAllocations, allocation)
	}
	b.UpdatedAt = now

	b.addDomainEvent(&DriverAllocationReplacedEvent{
		BookingID:   b.BookingID,
		Phase:       allocation.Phase,
		VehicleID:   allocation.VehicleID,
		DriverID:    allocation.DriverID,
		OccurredAt_: now,
	})

	return nil
}

func (b *Booking) routingLegsFor(phase RoutingPhaseName) []Leg {
	if phase == PhaseEmpty {
		return b.Routing.Empty.Legs
	}
	return b.Routing.Full.Legs
}

// MarkDeleted records the deletion event; the repository performs the remove
func (b *Booking) MarkDeleted() error {
	if !b.CanDelete() {
		return ErrBookingNotDeletable
	}

	b.addDomainEvent(&BookingDeletedEvent{
		BookingID:   b.BookingID,
		Status:      b.Status,
		OccurredAt_: time.Now().UTC(),
	})
	return nil
}

// addDomainEvent adds a domain event
func (b *Booking) addDomainEvent(event DomainEvent) {
	b.DomainEvents = append(b.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (b *Booking) GetDomainEvents() []DomainEvent {
	return b.DomainEvents
}

// ClearDomainEvents clears all domain events
func (b *Booking) ClearDomainEvents() {
	b.DomainEvents = make([]DomainEvent, 0)
}
