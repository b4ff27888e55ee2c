package projections

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freight-platform/booking-service/pkg/tenant"
)

// BookingDashboardStats is a denormalized read model for operational
// dashboards. Computed on demand from the bookings collection rather than
// kept in a separate projection store.
type BookingDashboardStats struct {
	TotalBookings int64 `json:"totalBookings"`

	ByStatus    map[string]int64 `json:"byStatus"`
	ByDirection map[string]int64 `json:"byDirection"`

	CreatedToday   int64 `json:"createdToday"`
	ConfirmedToday int64 `json:"confirmedToday"`
	CompletedToday int64 `json:"completedToday"`

	ActiveBookings  int64 `json:"activeBookings"`
	TotalContainers int64 `json:"totalContainers"`
	WithRoutingLegs int64 `json:"withRoutingLegs"`
}

// DashboardRepository computes dashboard statistics from the bookings
// collection.
type DashboardRepository struct {
	collection *mongo.Collection
}

// NewDashboardRepository creates a DashboardRepository over the given database
func NewDashboardRepository(db *mongo.Database) *DashboardRepository {
	return &DashboardRepository{collection: db.Collection("bookings")}
}

func (r *DashboardRepository) scoped(ctx context.Context, filter bson.M) bson.M {
	if tenantID := tenant.IDFromContext(ctx); tenantID != "" {
		filter["tenantId"] = tenantID
	}
	return filter
}

// GetStats returns tenant-scoped dashboard statistics
func (r *DashboardRepository) GetStats(ctx context.Context) (*BookingDashboardStats, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &BookingDashboardStats{
		ByStatus:    make(map[string]int64),
		ByDirection: make(map[string]int64),
	}

	total, err := r.collection.CountDocuments(ctx, r.scoped(ctx, bson.M{}))
	if err != nil {
		return nil, fmt.Errorf("counting bookings: %w", err)
	}
	stats.TotalBookings = total

	if err := r.groupCounts(ctx, "$status", stats.ByStatus); err != nil {
		return nil, err
	}
	if err := r.groupCounts(ctx, "$direction", stats.ByDirection); err != nil {
		return nil, err
	}

	today := func(field string) (int64, error) {
		return r.collection.CountDocuments(ctx, r.scoped(ctx, bson.M{
			field: bson.M{"$gte": startOfDay, "$lt": endOfDay},
		}))
	}

	if stats.CreatedToday, err = today("createdAt"); err != nil {
		return nil, fmt.Errorf("counting created today: %w", err)
	}
	if stats.ConfirmedToday, err = today("confirmedAt"); err != nil {
		return nil, fmt.Errorf("counting confirmed today: %w", err)
	}
	if stats.CompletedToday, err = today("completedAt"); err != nil {
		return nil, fmt.Errorf("counting completed today: %w", err)
	}

	active, err := r.collection.CountDocuments(ctx, r.scoped(ctx, bson.M{
		"status": bson.M{"$in": []string{"confirmed", "in_progress"}},
	}))
	if err != nil {
		return nil, fmt.Errorf("counting active bookings: %w", err)
	}
	stats.ActiveBookings = active

	withLegs, err := r.collection.CountDocuments(ctx, r.scoped(ctx, bson.M{
		"$or": []bson.M{
			{"routing.empty.legs.0": bson.M{"$exists": true}},
			{"routing.full.legs.0": bson.M{"$exists": true}},
		},
	}))
	if err != nil {
		return nil, fmt.Errorf("counting routed bookings: %w", err)
	}
	stats.WithRoutingLegs = withLegs

	containers, err := r.sumContainers(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalContainers = containers

	return stats, nil
}

func (r *DashboardRepository) groupCounts(ctx context.Context, field string, out map[string]int64) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: r.scoped(ctx, bson.M{})}},
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregating %s counts: %w", field, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return fmt.Errorf("decoding %s counts: %w", field, err)
	}
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return nil
}

func (r *DashboardRepository) sumContainers(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: r.scoped(ctx, bson.M{})}},
		{{Key: "$project", Value: bson.M{"n": bson.M{"$size": bson.M{"$ifNull": []interface{}{"$containerDetails", bson.A{}}}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregating container counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decoding container counts: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
