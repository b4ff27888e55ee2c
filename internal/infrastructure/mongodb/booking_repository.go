package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freight-platform/booking-service/internal/domain"
	"github.com/freight-platform/booking-service/pkg/tenant"
)

// BookingRepository persists booking aggregates in MongoDB. Every query is
// scoped to the tenant carried by the request context.
type BookingRepository struct {
	collection *mongo.Collection
}

// NewBookingRepository creates a repository over the bookings collection
func NewBookingRepository(db *mongo.Database) *BookingRepository {
	repo := &BookingRepository{
		collection: db.Collection("bookings"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *BookingRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "bookingNumber", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "direction", Value: 1}}},
		{Keys: bson.D{{Key: "vesselId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// scopedFilter adds the tenant boundary to a query filter
func scopedFilter(ctx context.Context, filter bson.M) bson.M {
	if tenantID := tenant.IDFromContext(ctx); tenantID != "" {
		filter["tenantId"] = tenantID
	}
	return filter
}

// Insert persists a brand new booking
func (r *BookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("booking %s already exists: %w", booking.BookingID, err)
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// Save replaces the stored booking document guarded by its version. The
// write applies only when the stored version matches the aggregate's; the
// version is incremented as part of the same write so a concurrent saver
// observes the mismatch.
func (r *BookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	expectedVersion := booking.Version
	booking.Version = expectedVersion + 1
	booking.UpdatedAt = time.Now().UTC()

	filter := scopedFilter(ctx, bson.M{
		"bookingId": booking.BookingID,
		"version":   expectedVersion,
	})

	result, err := r.collection.ReplaceOne(ctx, filter, booking)
	if err != nil {
		booking.Version = expectedVersion
		return fmt.Errorf("failed to save booking: %w", err)
	}
	if result.MatchedCount == 0 {
		booking.Version = expectedVersion
		return domain.ErrConcurrentModification
	}
	return nil
}

// FindByID retrieves a booking by its BookingID within the tenant
func (r *BookingRepository) FindByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.collection.FindOne(ctx, scopedFilter(ctx, bson.M{"bookingId": bookingID})).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByStatus retrieves bookings in a given status
func (r *BookingRepository) FindByStatus(ctx context.Context, status domain.BookingStatus, pagination domain.Pagination) ([]*domain.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, scopedFilter(ctx, bson.M{"status": status}), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*domain.Booking
	err = cursor.All(ctx, &bookings)
	return bookings, err
}

// FindAll retrieves bookings matching the filter
func (r *BookingRepository) FindAll(ctx context.Context, filter domain.BookingFilter, pagination domain.Pagination) ([]*domain.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, r.buildFilter(ctx, filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*domain.Booking
	err = cursor.All(ctx, &bookings)
	return bookings, err
}

// UpdateStatus performs a compare-and-set status transition. Two concurrent
// transitions on the same booking cannot both match the expected status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID string, expectedCurrent, target domain.BookingStatus) error {
	now := time.Now().UTC()
	set := bson.M{
		"status":    target,
		"updatedAt": now,
	}
	switch target {
	case domain.StatusConfirmed:
		set["confirmedAt"] = now
	case domain.StatusCompleted:
		set["completedAt"] = now
	case domain.StatusCancelled:
		set["cancelledAt"] = now
	}

	filter := scopedFilter(ctx, bson.M{
		"bookingId": bookingID,
		"status":    expectedCurrent,
	})

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// Cancel records the cancellation status and reason in one CAS write
func (r *BookingRepository) Cancel(ctx context.Context, bookingID string, expectedCurrent domain.BookingStatus, reason string) error {
	now := time.Now().UTC()
	filter := scopedFilter(ctx, bson.M{
		"bookingId": bookingID,
		"status":    expectedCurrent,
	})
	set := bson.M{
		"status":       domain.StatusCancelled,
		"cancelReason": reason,
		"cancelledAt":  now,
		"updatedAt":    now,
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// Delete removes a booking
func (r *BookingRepository) Delete(ctx context.Context, bookingID string) error {
	result, err := r.collection.DeleteOne(ctx, scopedFilter(ctx, bson.M{"bookingId": bookingID}))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// Count returns the number of bookings matching the filter
func (r *BookingRepository) Count(ctx context.Context, filter domain.BookingFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, r.buildFilter(ctx, filter))
}

func (r *BookingRepository) buildFilter(ctx context.Context, filter domain.BookingFilter) bson.M {
	query := scopedFilter(ctx, bson.M{})
	if filter.Direction != nil {
		query["direction"] = *filter.Direction
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.BookingNumber != nil {
		query["bookingNumber"] = *filter.BookingNumber
	}
	if filter.VesselID != nil {
		query["vesselId"] = *filter.VesselID
	}
	return query
}
