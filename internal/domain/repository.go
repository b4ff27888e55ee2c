package domain

import (
	"context"
)

// BookingRepository defines the interface for booking persistence
type BookingRepository interface {
	// Save persists a booking guarded by its version: the write applies
	// only when the stored version matches booking.Version, which is then
	// incremented. A mismatch returns ErrConcurrentModification.
	Save(ctx context.Context, booking *Booking) error

	// Insert persists a brand new booking
	Insert(ctx context.Context, booking *Booking) error

	// FindByID retrieves a booking by its BookingID within the tenant
	FindByID(ctx context.Context, bookingID string) (*Booking, error)

	// FindByStatus retrieves bookings by status
	FindByStatus(ctx context.Context, status BookingStatus, pagination Pagination) ([]*Booking, error)

	// FindAll retrieves bookings matching the filter
	FindAll(ctx context.Context, filter BookingFilter, pagination Pagination) ([]*Booking, error)

	// UpdateStatus performs a compare-and-set status transition: the write
	// applies only when the stored status still equals expectedCurrent.
	// A mismatch returns ErrConcurrentModification.
	UpdateStatus(ctx context.Context, bookingID string, expectedCurrent, target BookingStatus) error

	// Cancel flips the status to cancelled and records the reason in the
	// same compare-and-set write, so a cancellation is never half-applied.
	Cancel(ctx context.Context, bookingID string, expectedCurrent BookingStatus, reason string) error

	// Delete removes a booking
	Delete(ctx context.Context, bookingID string) error

	// Count returns the number of bookings matching the filter
	Count(ctx context.Context, filter BookingFilter) (int64, error)
}

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}

// BookingFilter represents filter options for querying bookings
type BookingFilter struct {
	Direction     *Direction
	Status        *BookingStatus
	BookingNumber *string
	VesselID      *int64
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish publishes a domain event
	Publish(ctx context.Context, event DomainEvent) error

	// PublishAll publishes multiple domain events
	PublishAll(ctx context.Context, events []DomainEvent) error
}
