package dto

import (
	"time"

	"github.com/freight-platform/booking-service/internal/domain"
)

// BookingResponse is the full booking representation
type BookingResponse struct {
	BookingID     string `json:"bookingId"`
	BookingNumber string `json:"bookingNumber"`
	Direction     string `json:"direction"`
	Status        string `json:"status"`

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	VesselID int64  `json:"vesselId,omitempty"`
	VoyageNo string `json:"voyageNo,omitempty"`

	Routing           RoutingResponse            `json:"routing"`
	ContainerDetails  []ContainerDetailResponse  `json:"containerDetails"`
	DriverAllocations []DriverAllocationResponse `json:"driverAllocations"`

	CancelReason string `json:"cancelReason,omitempty"`
	Version      int64  `json:"version"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// RoutingResponse holds both phase plans
type RoutingResponse struct {
	Empty RoutingPhaseResponse `json:"empty"`
	Full  RoutingPhaseResponse `json:"full"`
}

// RoutingPhaseResponse is one phase's spec and derived or manual chain
type RoutingPhaseResponse struct {
	ShippingLineID int64         `json:"shippingLineId,omitempty"`
	Pickup         string        `json:"pickup,omitempty"`
	Via            []string      `json:"via,omitempty"`
	Dropoff        string        `json:"dropoff,omitempty"`
	PickupDate     *time.Time    `json:"pickupDate,omitempty"`
	DropoffDate    *time.Time    `json:"dropoffDate,omitempty"`
	Legs           []LegResponse `json:"legs,omitempty"`
	LegsDerived    bool          `json:"legsDerived"`
}

// LegResponse is one hop of a leg chain
type LegResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ContainerDetailResponse is one container on the booking
type ContainerDetailResponse struct {
	ID              string  `json:"id"`
	ContainerNumber string  `json:"containerNumber"`
	SizeID          int64   `json:"sizeId,omitempty"`
	WarehouseID     int64   `json:"warehouseId,omitempty"`
	WeightGross     float64 `json:"weightGross,omitempty"`
	WeightTare      float64 `json:"weightTare,omitempty"`
	WeightNet       float64 `json:"weightNet,omitempty"`

	StockAllocation *StockAllocationResponse `json:"stockAllocation,omitempty"`
}

// StockAllocationResponse is a container's allocation state
type StockAllocationResponse struct {
	Direction    string                `json:"direction"`
	Stage        string                `json:"stage"`
	IsTerminal   bool                  `json:"isTerminal"`
	ProductLines []ProductLineResponse `json:"productLines"`
}

// ProductLineResponse is one SKU/batch line
type ProductLineResponse struct {
	SKUID       int64  `json:"skuId"`
	BatchNumber string `json:"batchNumber,omitempty"`

	ExpectedQty  int `json:"expectedQty,omitempty"`
	AllocatedQty int `json:"allocatedQty,omitempty"`
	ReceivedQty  int `json:"receivedQty,omitempty"`
	PickedQty    int `json:"pickedQty,omitempty"`

	ExpectedWeight float64 `json:"expectedWeight,omitempty"`
	ReceivedWeight float64 `json:"receivedWeight,omitempty"`
	PickedWeight   float64 `json:"pickedWeight,omitempty"`
}

// DriverAllocationResponse is one phase's transport assignment
type DriverAllocationResponse struct {
	Phase     string        `json:"phase"`
	Date      *time.Time    `json:"date,omitempty"`
	Time      string        `json:"time,omitempty"`
	VehicleID int64         `json:"vehicleId,omitempty"`
	DriverID  int64         `json:"driverId,omitempty"`
	Legs      []LegResponse `json:"legs,omitempty"`
}

// BookingListResponse is the paginated list envelope
type BookingListResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Total    int64            `json:"total"`
	Page     int64            `json:"page"`
	PageSize int64            `json:"pageSize"`
}

// BookingSummary is the compact list-view representation
type BookingSummary struct {
	BookingID      string    `json:"bookingId"`
	BookingNumber  string    `json:"bookingNumber"`
	Direction      string    `json:"direction"`
	Status         string    `json:"status"`
	From           string    `json:"from,omitempty"`
	To             string    `json:"to,omitempty"`
	VesselID       int64     `json:"vesselId,omitempty"`
	VoyageNo       string    `json:"voyageNo,omitempty"`
	ContainerCount int       `json:"containerCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// OrderedLegsResponse is the direction-ordered combined chain
type OrderedLegsResponse struct {
	BookingID string        `json:"bookingId"`
	Direction string        `json:"direction"`
	Legs      []LegResponse `json:"legs"`
}

func formatRef(ref *domain.LocationRef) string {
	if ref == nil {
		return ""
	}
	return ref.String()
}

func toLegResponses(legs []domain.Leg) []LegResponse {
	if len(legs) == 0 {
		return nil
	}
	out := make([]LegResponse, 0, len(legs))
	for _, leg := range legs {
		out = append(out, LegResponse{From: leg.From.String(), To: leg.To.String()})
	}
	return out
}

func toRoutingPhaseResponse(phase domain.RoutingPhase) RoutingPhaseResponse {
	resp := RoutingPhaseResponse{
		ShippingLineID: phase.ShippingLineID,
		Pickup:         formatRef(phase.Pickup),
		Dropoff:        formatRef(phase.Dropoff),
		PickupDate:     phase.PickupDate,
		DropoffDate:    phase.DropoffDate,
		Legs:           toLegResponses(phase.Legs),
		LegsDerived:    phase.LegsDerived,
	}
	for _, via := range phase.Via {
		resp.Via = append(resp.Via, via.String())
	}
	return resp
}

func toContainerDetailResponse(detail domain.ContainerDetail) ContainerDetailResponse {
	resp := ContainerDetailResponse{
		ID:              detail.ID,
		ContainerNumber: detail.ContainerNumber,
		SizeID:          detail.SizeID,
		WarehouseID:     detail.WarehouseID,
		WeightGross:     detail.WeightGross,
		WeightTare:      detail.WeightTare,
		WeightNet:       detail.WeightNet,
	}
	if alloc := detail.StockAllocation; alloc != nil {
		a := &StockAllocationResponse{
			Direction:  string(alloc.Direction),
			Stage:      string(alloc.Stage),
			IsTerminal: alloc.IsTerminal(),
		}
		for _, line := range alloc.ProductLines {
			a.ProductLines = append(a.ProductLines, ProductLineResponse{
				SKUID:          line.SKUID,
				BatchNumber:    line.BatchNumber,
				ExpectedQty:    line.ExpectedQty,
				AllocatedQty:   line.AllocatedQty,
				ReceivedQty:    line.ReceivedQty,
				PickedQty:      line.PickedQty,
				ExpectedWeight: line.ExpectedWeight,
				ReceivedWeight: line.ReceivedWeight,
				PickedWeight:   line.PickedWeight,
			})
		}
		resp.StockAllocation = a
	}
	return resp
}

// ToBookingResponse maps the aggregate to its API representation
func ToBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		BookingID:     b.BookingID,
		BookingNumber: b.BookingNumber,
		Direction:     string(b.Direction),
		Status:        string(b.Status),
		From:          formatRef(b.From),
		To:            formatRef(b.To),
		VesselID:      b.VesselID,
		VoyageNo:      b.VoyageNo,
		Routing: RoutingResponse{
			Empty: toRoutingPhaseResponse(b.Routing.Empty),
			Full:  toRoutingPhaseResponse(b.Routing.Full),
		},
		ContainerDetails:  []ContainerDetailResponse{},
		DriverAllocations: []DriverAllocationResponse{},
		CancelReason:      b.CancelReason,
		Version:           b.Version,
		ConfirmedAt:       b.ConfirmedAt,
		CompletedAt:       b.CompletedAt,
		CancelledAt:       b.CancelledAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	for _, detail := range b.ContainerDetails {
		resp.ContainerDetails = append(resp.ContainerDetails, toContainerDetailResponse(detail))
	}
	for _, alloc := range b.DriverAllocations {
		resp.DriverAllocations = append(resp.DriverAllocations, DriverAllocationResponse{
			Phase:     string(alloc.Phase),
			Date:      alloc.Date,
			Time:      alloc.Time,
			VehicleID: alloc.VehicleID,
			DriverID:  alloc.DriverID,
			Legs:      toLegResponses(alloc.Legs),
		})
	}
	return resp
}

// ToBookingSummary maps the aggregate to its list-view representation
func ToBookingSummary(b *domain.Booking) BookingSummary {
	return BookingSummary{
		BookingID:      b.BookingID,
		BookingNumber:  b.BookingNumber,
		Direction:      string(b.Direction),
		Status:         string(b.Status),
		From:           formatRef(b.From),
		To:             formatRef(b.To),
		VesselID:       b.VesselID,
		VoyageNo:       b.VoyageNo,
		ContainerCount: len(b.ContainerDetails),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// ToBookingListResponse maps a page of bookings
func ToBookingListResponse(bookings []*domain.Booking, total int64, page, pageSize int64) BookingListResponse {
	resp := BookingListResponse{
		Bookings: make([]BookingSummary, 0, len(bookings)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, ToBookingSummary(b))
	}
	return resp
}

// ToOrderedLegsResponse maps the direction-ordered chain
func ToOrderedLegsResponse(b *domain.Booking) OrderedLegsResponse {
	legs := toLegResponses(b.OrderedLegs())
	if legs == nil {
		legs = []LegResponse{}
	}
	return OrderedLegsResponse{
		BookingID: b.BookingID,
		Direction: string(b.Direction),
		Legs:      legs,
	}
}
