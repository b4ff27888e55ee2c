package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/freight-platform/booking-service/internal/domain"
	"github.com/freight-platform/booking-service/pkg/logging"
	"github.com/freight-platform/booking-service/pkg/metrics"
	"github.com/freight-platform/booking-service/pkg/tenant"
)

// BookingService handles booking lifecycle, allocation, and routing operations
type BookingService struct {
	repo      domain.BookingRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewBookingService creates a new BookingService
func NewBookingService(repo domain.BookingRepository, publisher domain.EventPublisher, logger *logging.Logger, m *metrics.Metrics) *BookingService {
	return &BookingService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// CreateBooking creates a new booking in draft status
func (s *BookingService) CreateBooking(ctx context.Context, cmd CreateBookingCommand) (*domain.Booking, error) {
	bookingID := fmt.Sprintf("BKG-%s", uuid.New().String())

	booking, err := domain.NewBooking(bookingID, tenantID(ctx), cmd.BookingNumber, cmd.Direction, cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	booking.VesselID = cmd.VesselID
	booking.VoyageNo = cmd.VoyageNo

	if cmd.Empty != nil {
		if err := booking.UpdateRoutingPhase(domain.PhaseEmpty, *cmd.Empty); err != nil {
			return nil, err
		}
	}
	if cmd.Full != nil {
		if err := booking.UpdateRoutingPhase(domain.PhaseFull, *cmd.Full); err != nil {
			return nil, err
		}
	}

	// Legs may already be derivable when both endpoints arrive with creation
	if err := booking.GenerateRoutingLegs(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	if s.metrics != nil {
		s.metrics.RecordBookingCreated(string(cmd.Direction))
	}

	s.logger.WithContext(ctx).Info("Created booking",
		"bookingId", booking.BookingID,
		"bookingNumber", cmd.BookingNumber,
		"direction", cmd.Direction,
	)

	return booking, nil
}

// GetBooking retrieves a booking by id
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

// ListBookings retrieves bookings matching the filter
func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter, pagination domain.Pagination) ([]*domain.Booking, int64, error) {
	bookings, err := s.repo.FindAll(ctx, filter, pagination)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListBookingsByStatus retrieves bookings in a given status
func (s *BookingService) ListBookingsByStatus(ctx context.Context, status domain.BookingStatus, pagination domain.Pagination) ([]*domain.Booking, error) {
	return s.repo.FindByStatus(ctx, status, pagination)
}

// UpdateBooking applies a partial update and re-derives routing legs where
// the idempotence guard allows.
func (s *BookingService) UpdateBooking(ctx context.Context, cmd UpdateBookingCommand) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	if cmd.VesselID != nil {
		booking.VesselID = *cmd.VesselID
	}
	if cmd.VoyageNo != nil {
		booking.VoyageNo = *cmd.VoyageNo
	}

	if cmd.Empty != nil {
		if err := booking.UpdateRoutingPhase(domain.PhaseEmpty, *cmd.Empty); err != nil {
			return nil, err
		}
	}
	if cmd.Full != nil {
		if err := booking.UpdateRoutingPhase(domain.PhaseFull, *cmd.Full); err != nil {
			return nil, err
		}
	}

	if err := booking.UpdateEndpoints(cmd.From, cmd.To); err != nil {
		return nil, err
	}

	if err := s.save(ctx, booking, "update"); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	s.logger.WithContext(ctx).Info("Updated booking", "bookingId", cmd.BookingID)

	return booking, nil
}

// TransitionBooking moves a booking to a target lifecycle status using a
// compare-and-set against the status observed at read time.
func (s *BookingService) TransitionBooking(ctx context.Context, cmd TransitionBookingCommand) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	previous := booking.Status
	if err := booking.TransitionTo(cmd.Target); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, cmd.BookingID, previous, cmd.Target); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	if s.metrics != nil {
		s.metrics.RecordStatusTransition(string(previous), string(cmd.Target))
	}

	s.logger.WithContext(ctx).Info("Booking status changed",
		"bookingId", cmd.BookingID,
		"from", previous,
		"to", cmd.Target,
	)

	return booking, nil
}

// CancelBooking cancels a booking from any non-terminal status
func (s *BookingService) CancelBooking(ctx context.Context, cmd CancelBookingCommand) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	previous := booking.Status
	if err := booking.Cancel(cmd.Reason); err != nil {
		return nil, err
	}

	if err := s.repo.Cancel(ctx, cmd.BookingID, previous, cmd.Reason); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	if s.metrics != nil {
		s.metrics.RecordStatusTransition(string(previous), string(domain.StatusCancelled))
	}

	s.logger.WithContext(ctx).Info("Cancelled booking",
		"bookingId", cmd.BookingID,
		"reason", cmd.Reason,
	)

	return booking, nil
}

// DeleteBooking removes a booking; only draft and cancelled bookings qualify
func (s *BookingService) DeleteBooking(ctx context.Context, cmd DeleteBookingCommand) error {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return err
	}

	if err := booking.MarkDeleted(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, cmd.BookingID); err != nil {
		return err
	}

	s.publishEvents(ctx, booking)

	s.logger.WithContext(ctx).Info("Deleted booking", "bookingId", cmd.BookingID)

	return nil
}

// UpsertContainerDetail inserts or updates a container detail on the booking
func (s *BookingService) UpsertContainerDetail(ctx context.Context, cmd UpsertContainerDetailCommand) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	if err := booking.UpsertContainerDetail(cmd.Detail); err != nil {
		return nil, err
	}

	if err := s.save(ctx, booking, "container"); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	s.logger.WithContext(ctx).Info("Upserted container detail",
		"bookingId", cmd.BookingID,
		"containerDetailId", cmd.Detail.ID,
		"containerNumber", cmd.Detail.ContainerNumber,
	)

	return booking, nil
}

// AdvanceStockAllocation advances a container detail's allocation stage
func (s *BookingService) AdvanceStockAllocation(ctx context.Context, cmd AdvanceStockAllocationCommand) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	if err := booking.AdvanceStockAllocation(cmd.ContainerDetailID, cmd.TargetStage, cmd.ProductLines); err != nil {
		return nil, err
	}

	if err := s.save(ctx, booking, "allocation"); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	if s.metrics != nil {
		s.metrics.RecordAllocationAdvance(string(booking.Direction), string(cmd.TargetStage))
	}

	s.logger.WithContext(ctx).Info("Advanced stock allocation",
		"bookingId", cmd.BookingID,
		"containerDetailId", cmd.ContainerDetailID,
		"stage", cmd.TargetStage,
	)

	return booking, nil
}

// ReplaceDriverAllocation stores the transport assignment for a phase
func (s *BookingService) ReplaceDriverAllocation(ctx context.Context, cmd ReplaceDriverAllocationCommand) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	if err := booking.ReplaceDriverAllocation(cmd.Allocation); err != nil {
		return nil, err
	}

	if err := s.save(ctx, booking, "driver-allocation"); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	s.logger.WithContext(ctx).Info("Replaced driver allocation",
		"bookingId", cmd.BookingID,
		"phase", cmd.Allocation.Phase,
		"vehicleId", cmd.Allocation.VehicleID,
		"driverId", cmd.Allocation.DriverID,
	)

	return booking, nil
}

// GenerateRoutingLegs derives routing legs for a booking on demand
func (s *BookingService) GenerateRoutingLegs(ctx context.Context, cmd GenerateRoutingLegsCommand) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	if err := booking.GenerateRoutingLegs(); err != nil {
		return nil, err
	}

	if err := s.save(ctx, booking, "routing"); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, booking)

	if s.metrics != nil && (booking.Routing.Empty.HasLegs() || booking.Routing.Full.HasLegs()) {
		s.metrics.RecordRoutingLegsGenerated(string(booking.Direction))
	}

	return booking, nil
}

// save persists the aggregate under optimistic concurrency and records
// conflicts in the metrics.
func (s *BookingService) save(ctx context.Context, booking *domain.Booking, operation string) error {
	err := s.repo.Save(ctx, booking)
	if err == domain.ErrConcurrentModification && s.metrics != nil {
		s.metrics.RecordVersionConflict(operation)
	}
	return err
}

// publishEvents forwards accumulated domain events to the broker. Publishing
// is best-effort after a durable write; a broker failure is logged, not
// surfaced to the caller.
func (s *BookingService) publishEvents(ctx context.Context, booking *domain.Booking) {
	events := booking.GetDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		booking.ClearDomainEvents()
		return
	}

	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithContext(ctx).Warn("Failed to publish domain events",
			"bookingId", booking.BookingID,
			"eventCount", len(events),
			"error", err.Error(),
		)
	}
	booking.ClearDomainEvents()
}

func tenantID(ctx context.Context) string {
	return tenant.IDFromContext(ctx)
}
