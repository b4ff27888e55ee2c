package domain

import "time"

// RoutingPhaseName selects the empty-container or full-container movement
// phase of a booking.
type RoutingPhaseName string

const (
	PhaseEmpty RoutingPhaseName = "empty"
	PhaseFull  RoutingPhaseName = "full"
)

// IsValid checks if the phase name is known
func (p RoutingPhaseName) IsValid() bool {
	return p == PhaseEmpty || p == PhaseFull
}

// Leg is one point-to-point segment of a transport routing chain
type Leg struct {
	From LocationRef `bson:"from" json:"from"`
	To   LocationRef `bson:"to" json:"to"`
}

// RoutingPhase holds the sparse routing specification for one container phase
// and the leg chain derived from it.
type RoutingPhase struct {
	ShippingLineID int64         `bson:"shippingLineId,omitempty" json:"shippingLineId,omitempty"`
	Pickup         *LocationRef  `bson:"pickup,omitempty" json:"pickup,omitempty"`
	Via            []LocationRef `bson:"via,omitempty" json:"via,omitempty"`
	Dropoff        *LocationRef  `bson:"dropoff,omitempty" json:"dropoff,omitempty"`
	PickupDate     *time.Time    `bson:"pickupDate,omitempty" json:"pickupDate,omitempty"`
	DropoffDate    *time.Time    `bson:"dropoffDate,omitempty" json:"dropoffDate,omitempty"`

	Legs []Leg `bson:"legs,omitempty" json:"legs,omitempty"`

	// LegsDerived marks the chain as builder output. A manual edit clears
	// the flag and the chain becomes authoritative.
	LegsDerived bool `bson:"legsDerived" json:"legsDerived"`
}

// HasLegs reports whether the phase already carries a leg chain
func (p *RoutingPhase) HasLegs() bool {
	return len(p.Legs) > 0
}

// SetLegs replaces the phase's chain with a manually edited one
func (p *RoutingPhase) SetLegs(legs []Leg) error {
	if err := validateChain(legs); err != nil {
		return err
	}
	p.Legs = legs
	p.LegsDerived = false
	return nil
}

// lastTo returns the final destination of the phase's chain, or nil
func (p *RoutingPhase) lastTo() *LocationRef {
	if len(p.Legs) == 0 {
		return nil
	}
	to := p.Legs[len(p.Legs)-1].To
	return &to
}

// Routing pairs the two phase specifications owned by a booking
type Routing struct {
	Empty RoutingPhase `bson:"empty" json:"empty"`
	Full  RoutingPhase `bson:"full" json:"full"`
}

// GenerateLegs derives leg chains for both phases from the sparse routing
// specification and the booking's overall endpoints.
//
// A phase that already has legs is authoritative and is never regenerated;
// derivation only runs while both phases are empty. A phase whose anchor
// points cannot be resolved produces no legs rather than a leg with an
// unresolved endpoint. A contiguity failure aborts the whole derivation and
// leaves stored legs untouched.
func (r *Routing) GenerateLegs(from, to *LocationRef) error {
	if r.Empty.HasLegs() || r.Full.HasLegs() {
		return nil
	}
	if from == nil || to == nil {
		return nil
	}

	emptyLegs := buildEmptyLegs(&r.Empty, from)

	fullLegs := buildFullLegs(&r.Full, &r.Empty, emptyLegs, from, to)

	if err := validateChain(emptyLegs); err != nil {
		return err
	}
	if err := validateChain(fullLegs); err != nil {
		return err
	}

	if len(emptyLegs) > 0 {
		r.Empty.Legs = emptyLegs
		r.Empty.LegsDerived = true
	}
	if len(fullLegs) > 0 {
		r.Full.Legs = fullLegs
		r.Full.LegsDerived = true
	}

	return nil
}

// buildEmptyLegs chains pickup through via points to the phase dropoff,
// defaulting the dropoff to the booking's overall "from" endpoint. No pickup
// means no empty legs; the builder never guesses a start point.
func buildEmptyLegs(phase *RoutingPhase, bookingFrom *LocationRef) []Leg {
	if phase.Pickup == nil {
		return nil
	}

	dropoff := phase.Dropoff
	if dropoff == nil {
		dropoff = bookingFrom
	}
	if dropoff == nil {
		return nil
	}

	points := make([]LocationRef, 0, len(phase.Via)+2)
	points = append(points, *phase.Pickup)
	points = append(points, phase.Via...)
	points = append(points, *dropoff)

	return chainPoints(points)
}

// buildFullLegs chains the full-phase movement. The first leg inherits
// continuity from the empty chain's last destination, falling back to the
// empty phase's recorded dropoff and then the booking's "from" endpoint.
func buildFullLegs(phase, emptyPhase *RoutingPhase, emptyLegs []Leg, bookingFrom, bookingTo *LocationRef) []Leg {
	var start *LocationRef
	if len(emptyLegs) > 0 {
		start = &emptyLegs[len(emptyLegs)-1].To
	} else if emptyPhase.Dropoff != nil {
		start = emptyPhase.Dropoff
	} else {
		start = bookingFrom
	}
	if start == nil {
		return nil
	}

	end := phase.Dropoff
	if end == nil {
		end = bookingTo
	}
	if end == nil {
		return nil
	}

	points := make([]LocationRef, 0, len(phase.Via)+2)
	points = append(points, *start)
	points = append(points, phase.Via...)
	points = append(points, *end)

	return chainPoints(points)
}

// chainPoints turns an ordered point list into adjacent legs
func chainPoints(points []LocationRef) []Leg {
	if len(points) < 2 {
		return nil
	}
	legs := make([]Leg, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		legs = append(legs, Leg{From: points[i], To: points[i+1]})
	}
	return legs
}

// validateChain checks adjacent-leg contiguity
func validateChain(legs []Leg) error {
	for i := 0; i < len(legs)-1; i++ {
		if !legs[i].To.Equal(legs[i+1].From) {
			return ErrDiscontinuousLegChain
		}
	}
	return nil
}

// OrderedLegs returns the published leg chain across both phases. The full
// phase moves first in time on imports, the empty phase on exports.
func (r *Routing) OrderedLegs(direction Direction) []Leg {
	var first, second []Leg
	if direction == DirectionImport {
		first, second = r.Full.Legs, r.Empty.Legs
	} else {
		first, second = r.Empty.Legs, r.Full.Legs
	}

	ordered := make([]Leg, 0, len(first)+len(second))
	ordered = append(ordered, first...)
	ordered = append(ordered, second...)
	return ordered
}

// DriverAllocation mirrors a routing phase's legs annotated with the
// transport assignment. It is seeded once from builder output and thereafter
// edited independently.
type DriverAllocation struct {
	Phase     RoutingPhaseName `bson:"phase" json:"phase"`
	Date      *time.Time       `bson:"date,omitempty" json:"date,omitempty"`
	Time      string           `bson:"time,omitempty" json:"time,omitempty"`
	VehicleID int64            `bson:"vehicleId,omitempty" json:"vehicleId,omitempty"`
	DriverID  int64            `bson:"driverId,omitempty" json:"driverId,omitempty"`
	Legs      []Leg            `bson:"legs,omitempty" json:"legs,omitempty"`
}
