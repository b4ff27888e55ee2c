package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/freight-platform/booking-service/internal/domain"
)

// LocationValue carries a location reference across the wire. The wizard
// sends either a "collection:id" string or a bare numeric id, so the field
// accepts both shapes and defers collection resolution to the field context.
type LocationValue struct {
	raw string
	set bool
}

// UnmarshalJSON accepts a JSON string or number
func (v *LocationValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.raw = s
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		v.raw = n.String()
	}
	v.set = true
	return nil
}

// MarshalJSON emits the raw value as a string
func (v LocationValue) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// IsSet reports whether the field was present in the payload
func (v LocationValue) IsSet() bool { return v.set }

// Ref resolves the value against a field-context default collection.
// Unparseable input resolves to nil, meaning "no location set".
func (v LocationValue) Ref(defaultCollection domain.LocationCollection) *domain.LocationRef {
	if !v.set {
		return nil
	}
	return domain.ParseLocationRefWithDefault(v.raw, defaultCollection)
}

// RefRestricted resolves the value but only accepts the listed collections
func (v LocationValue) RefRestricted(defaultCollection domain.LocationCollection, allowed ...domain.LocationCollection) *domain.LocationRef {
	if !v.set {
		return nil
	}
	return domain.ParseLocationRefRestricted(v.raw, defaultCollection, allowed...)
}

// RelationID carries a foreign-key id that the wizard serializes either as
// a bare number or as an embedded relation object {"id": n}.
type RelationID int64

// UnmarshalJSON accepts a number, a numeric string, or {"id": n}
func (r *RelationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}
	switch data[0] {
	case '{':
		var obj struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = RelationID(obj.ID)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// treat unresolvable relations as unset
			*r = 0
			return nil
		}
		*r = RelationID(n)
	default:
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*r = RelationID(n)
	}
	return nil
}

// Int64 returns the underlying id
func (r RelationID) Int64() int64 { return int64(r) }

// CreateBookingRequest creates a new booking in draft status
type CreateBookingRequest struct {
	BookingNumber string               `json:"bookingNumber" binding:"required,booking_number"`
	Direction     string               `json:"direction" binding:"required,direction"`
	From          LocationValue        `json:"from"`
	To            LocationValue        `json:"to"`
	VesselID      RelationID           `json:"vesselId"`
	VoyageNo      string               `json:"voyageNo,omitempty"`
	Empty         *RoutingPhaseRequest `json:"empty,omitempty"`
	Full          *RoutingPhaseRequest `json:"full,omitempty"`
}

// UpdateBookingRequest partially updates endpoints, freight metadata and
// routing specifications. Absent fields are left untouched.
type UpdateBookingRequest struct {
	From     *LocationValue       `json:"from,omitempty"`
	To       *LocationValue       `json:"to,omitempty"`
	VesselID *RelationID          `json:"vesselId,omitempty"`
	VoyageNo *string              `json:"voyageNo,omitempty"`
	Empty    *RoutingPhaseRequest `json:"empty,omitempty"`
	Full     *RoutingPhaseRequest `json:"full,omitempty"`
}

// RoutingPhaseRequest is the sparse routing specification for one phase
type RoutingPhaseRequest struct {
	ShippingLineID RelationID      `json:"shippingLineId,omitempty"`
	Pickup         LocationValue   `json:"pickup"`
	Via            []LocationValue `json:"via,omitempty"`
	Dropoff        LocationValue   `json:"dropoff"`
	PickupDate     *time.Time      `json:"pickupDate,omitempty"`
	DropoffDate    *time.Time      `json:"dropoffDate,omitempty"`
	Legs           []LegRequest    `json:"legs,omitempty"`
}

// LegRequest is one from/to hop of a manually supplied chain
type LegRequest struct {
	From LocationValue `json:"from" binding:"required"`
	To   LocationValue `json:"to" binding:"required"`
}

// ToDomain converts the phase spec. The phase name picks the default
// collection for bare pickup ids: empty-phase pickups are empty parks,
// full-phase pickups are customer sites.
func (r *RoutingPhaseRequest) ToDomain(phase domain.RoutingPhaseName) domain.RoutingPhase {
	p := domain.RoutingPhase{
		ShippingLineID: r.ShippingLineID.Int64(),
		Dropoff:        r.Dropoff.Ref(domain.CollectionCustomer),
		PickupDate:     r.PickupDate,
		DropoffDate:    r.DropoffDate,
	}
	if phase == domain.PhaseEmpty {
		p.Pickup = r.Pickup.RefRestricted(domain.CollectionEmptyPark, domain.CollectionEmptyPark)
	} else {
		p.Pickup = r.Pickup.Ref(domain.CollectionCustomer)
	}
	for _, v := range r.Via {
		if ref := v.Ref(domain.CollectionWarehouse); ref != nil {
			p.Via = append(p.Via, *ref)
		}
	}
	for _, leg := range r.Legs {
		from := leg.From.Ref(domain.CollectionCustomer)
		to := leg.To.Ref(domain.CollectionCustomer)
		if from == nil || to == nil {
			continue
		}
		p.Legs = append(p.Legs, domain.Leg{From: *from, To: *to})
	}
	return p
}

// TransitionBookingRequest requests a lifecycle status transition
type TransitionBookingRequest struct {
	Target string `json:"target" binding:"required,oneof=draft confirmed in_progress completed cancelled"`
}

// CancelBookingRequest cancels a booking with an optional reason
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// ContainerDetailRequest upserts one container detail on a booking
type ContainerDetailRequest struct {
	ID              string     `json:"id,omitempty"`
	ContainerNumber string     `json:"containerNumber" binding:"required,container_number"`
	SizeID          RelationID `json:"sizeId,omitempty"`
	WarehouseID     RelationID `json:"warehouseId,omitempty"`
	WeightGross     float64    `json:"weightGross,omitempty" binding:"omitempty,gt=0"`
	WeightTare      float64    `json:"weightTare,omitempty" binding:"omitempty,gt=0"`
}

// ToDomain converts the request to a container detail
func (r *ContainerDetailRequest) ToDomain() domain.ContainerDetail {
	return domain.ContainerDetail{
		ID:              r.ID,
		ContainerNumber: r.ContainerNumber,
		SizeID:          r.SizeID.Int64(),
		WarehouseID:     r.WarehouseID.Int64(),
		WeightGross:     r.WeightGross,
		WeightTare:      r.WeightTare,
	}
}

// ProductLineRequest is one SKU/batch quantity line of an allocation
type ProductLineRequest struct {
	SKUID       RelationID `json:"skuId"`
	BatchNumber string     `json:"batchNumber,omitempty"`

	ExpectedQty  int `json:"expectedQty,omitempty" binding:"omitempty,min=0"`
	AllocatedQty int `json:"allocatedQty,omitempty" binding:"omitempty,min=0"`
	ReceivedQty  int `json:"receivedQty,omitempty" binding:"omitempty,min=0"`
	PickedQty    int `json:"pickedQty,omitempty" binding:"omitempty,min=0"`

	ExpectedWeight float64 `json:"expectedWeight,omitempty"`
	ReceivedWeight float64 `json:"receivedWeight,omitempty"`
	PickedWeight   float64 `json:"pickedWeight,omitempty"`
}

// ToDomain converts the line, carrying the resolved SKU id
func (r *ProductLineRequest) ToDomain() domain.ProductLine {
	return domain.ProductLine{
		SKUID:          r.SKUID.Int64(),
		BatchNumber:    r.BatchNumber,
		ExpectedQty:    r.ExpectedQty,
		AllocatedQty:   r.AllocatedQty,
		ReceivedQty:    r.ReceivedQty,
		PickedQty:      r.PickedQty,
		ExpectedWeight: r.ExpectedWeight,
		ReceivedWeight: r.ReceivedWeight,
		PickedWeight:   r.PickedWeight,
	}
}

// AdvanceAllocationRequest moves a container's stock allocation forward
type AdvanceAllocationRequest struct {
	TargetStage  string               `json:"targetStage" binding:"required"`
	ProductLines []ProductLineRequest `json:"productLines,omitempty"`
}

// DomainLines converts the product lines
func (r *AdvanceAllocationRequest) DomainLines() []domain.ProductLine {
	lines := make([]domain.ProductLine, 0, len(r.ProductLines))
	for _, l := range r.ProductLines {
		lines = append(lines, l.ToDomain())
	}
	return lines
}

// DriverAllocationRequest replaces the transport assignment for one phase
type DriverAllocationRequest struct {
	Date      *time.Time   `json:"date,omitempty"`
	Time      string       `json:"time,omitempty"`
	VehicleID RelationID   `json:"vehicleId,omitempty"`
	DriverID  RelationID   `json:"driverId,omitempty"`
	Legs      []LegRequest `json:"legs,omitempty"`
}

// ToDomain converts the request for the named phase
func (r *DriverAllocationRequest) ToDomain(phase domain.RoutingPhaseName) domain.DriverAllocation {
	alloc := domain.DriverAllocation{
		Phase:     phase,
		Date:      r.Date,
		Time:      r.Time,
		VehicleID: r.VehicleID.Int64(),
		DriverID:  r.DriverID.Int64(),
	}
	for _, leg := range r.Legs {
		from := leg.From.Ref(domain.CollectionCustomer)
		to := leg.To.Ref(domain.CollectionCustomer)
		if from == nil || to == nil {
			continue
		}
		alloc.Legs = append(alloc.Legs, domain.Leg{From: *from, To: *to})
	}
	return alloc
}

// ListBookingsQuery carries list filters and pagination from query params
type ListBookingsQuery struct {
	Page          int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize      int    `form:"pageSize,default=20" binding:"omitempty,min=1,max=100"`
	Direction     string `form:"direction" binding:"omitempty,direction"`
	Status        string `form:"status" binding:"omitempty,oneof=draft confirmed in_progress completed cancelled"`
	BookingNumber string `form:"bookingNumber" binding:"omitempty,max=64"`
	VesselID      int64  `form:"vesselId" binding:"omitempty,min=1"`
}

// Filter converts the query into a repository filter
func (q *ListBookingsQuery) Filter() domain.BookingFilter {
	f := domain.BookingFilter{}
	if q.Direction != "" {
		d := domain.Direction(q.Direction)
		f.Direction = &d
	}
	if q.Status != "" {
		s := domain.BookingStatus(q.Status)
		f.Status = &s
	}
	if q.BookingNumber != "" {
		f.BookingNumber = &q.BookingNumber
	}
	if q.VesselID > 0 {
		f.VesselID = &q.VesselID
	}
	return f
}

// Pagination converts the query into repository pagination
func (q *ListBookingsQuery) Pagination() domain.Pagination {
	p := domain.DefaultPagination()
	if q.Page > 0 {
		p.Page = int64(q.Page)
	}
	if q.PageSize > 0 {
		p.PageSize = int64(q.PageSize)
	}
	return p
}
