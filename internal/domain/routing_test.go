package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(collection LocationCollection, id int64) *LocationRef {
	return &LocationRef{Collection: collection, ID: id}
}

func TestGenerateLegsImport(t *testing.T) {
	// import booking: full movement runs ship-side to customer, empty
	// positioning returns the box. Empty pickup at a park, dropoff defaults
	// to the booking's "from" endpoint.
	routing := Routing{
		Empty: RoutingPhase{Pickup: loc(CollectionEmptyPark, 2)},
	}

	err := routing.GenerateLegs(loc(CollectionCustomer, 5), loc(CollectionCustomer, 9))
	require.NoError(t, err)

	require.Len(t, routing.Empty.Legs, 1)
	assert.Equal(t, Leg{From: LocationRef{CollectionEmptyPark, 2}, To: LocationRef{CollectionCustomer, 5}}, routing.Empty.Legs[0])
	assert.True(t, routing.Empty.LegsDerived)

	require.Len(t, routing.Full.Legs, 1)
	assert.Equal(t, Leg{From: LocationRef{CollectionCustomer, 5}, To: LocationRef{CollectionCustomer, 9}}, routing.Full.Legs[0])
	assert.True(t, routing.Full.LegsDerived)
}

func TestGenerateLegsExportWithVia(t *testing.T) {
	routing := Routing{
		Empty: RoutingPhase{
			Pickup: loc(CollectionEmptyPark, 1),
			Via:    []LocationRef{{CollectionWarehouse, 3}},
		},
	}

	err := routing.GenerateLegs(loc(CollectionCustomer, 7), loc(CollectionWharf, 4))
	require.NoError(t, err)

	require.Len(t, routing.Empty.Legs, 2)
	assert.Equal(t, Leg{From: LocationRef{CollectionEmptyPark, 1}, To: LocationRef{CollectionWarehouse, 3}}, routing.Empty.Legs[0])
	assert.Equal(t, Leg{From: LocationRef{CollectionWarehouse, 3}, To: LocationRef{CollectionCustomer, 7}}, routing.Empty.Legs[1])

	// full chain starts where the empty chain ended
	require.Len(t, routing.Full.Legs, 1)
	assert.Equal(t, Leg{From: LocationRef{CollectionCustomer, 7}, To: LocationRef{CollectionWharf, 4}}, routing.Full.Legs[0])
}

func TestGenerateLegsIdempotenceGuard(t *testing.T) {
	manual := []Leg{{From: LocationRef{CollectionCustomer, 1}, To: LocationRef{CollectionCustomer, 2}}}
	routing := Routing{
		Empty: RoutingPhase{
			Pickup: loc(CollectionEmptyPark, 1),
			Legs:   manual,
		},
	}

	err := routing.GenerateLegs(loc(CollectionCustomer, 7), loc(CollectionCustomer, 9))
	require.NoError(t, err)

	// existing legs are authoritative for both phases
	assert.Equal(t, manual, routing.Empty.Legs)
	assert.False(t, routing.Empty.LegsDerived)
	assert.Empty(t, routing.Full.Legs)
}

func TestGenerateLegsMissingEndpoints(t *testing.T) {
	tests := []struct {
		name string
		from *LocationRef
		to   *LocationRef
	}{
		{"missing from", nil, loc(CollectionCustomer, 9)},
		{"missing to", loc(CollectionCustomer, 5), nil},
		{"missing both", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routing := Routing{
				Empty: RoutingPhase{Pickup: loc(CollectionEmptyPark, 2)},
			}

			err := routing.GenerateLegs(tt.from, tt.to)
			require.NoError(t, err)
			assert.Empty(t, routing.Empty.Legs)
			assert.Empty(t, routing.Full.Legs)
		})
	}
}

func TestGenerateLegsNoEmptyPickup(t *testing.T) {
	// without a pickup the builder never guesses an empty start point;
	// the full chain anchors on the booking endpoints instead
	routing := Routing{}

	err := routing.GenerateLegs(loc(CollectionCustomer, 5), loc(CollectionCustomer, 9))
	require.NoError(t, err)

	assert.Empty(t, routing.Empty.Legs)
	require.Len(t, routing.Full.Legs, 1)
	assert.Equal(t, Leg{From: LocationRef{CollectionCustomer, 5}, To: LocationRef{CollectionCustomer, 9}}, routing.Full.Legs[0])
}

func TestGenerateLegsFullStartFallsBackToEmptyDropoff(t *testing.T) {
	// no empty legs are derivable, but the empty phase's recorded dropoff
	// still anchors the full chain
	routing := Routing{
		Empty: RoutingPhase{Dropoff: loc(CollectionWarehouse, 6)},
	}

	err := routing.GenerateLegs(loc(CollectionCustomer, 5), loc(CollectionCustomer, 9))
	require.NoError(t, err)

	assert.Empty(t, routing.Empty.Legs)
	require.Len(t, routing.Full.Legs, 1)
	assert.Equal(t, Leg{From: LocationRef{CollectionWarehouse, 6}, To: LocationRef{CollectionCustomer, 9}}, routing.Full.Legs[0])
}

func TestGenerateLegsFullDropoffOverridesBookingTo(t *testing.T) {
	routing := Routing{
		Full: RoutingPhase{Dropoff: loc(CollectionWharf, 8)},
	}

	err := routing.GenerateLegs(loc(CollectionCustomer, 5), loc(CollectionCustomer, 9))
	require.NoError(t, err)

	require.Len(t, routing.Full.Legs, 1)
	assert.Equal(t, LocationRef{CollectionWharf, 8}, routing.Full.Legs[0].To)
}

func TestSetLegs(t *testing.T) {
	phase := RoutingPhase{LegsDerived: true}

	contiguous := []Leg{
		{From: LocationRef{CollectionEmptyPark, 1}, To: LocationRef{CollectionWarehouse, 3}},
		{From: LocationRef{CollectionWarehouse, 3}, To: LocationRef{CollectionCustomer, 7}},
	}
	require.NoError(t, phase.SetLegs(contiguous))
	assert.Equal(t, contiguous, phase.Legs)
	assert.False(t, phase.LegsDerived, "manual edit clears the derived flag")

	broken := []Leg{
		{From: LocationRef{CollectionEmptyPark, 1}, To: LocationRef{CollectionWarehouse, 3}},
		{From: LocationRef{CollectionWarehouse, 4}, To: LocationRef{CollectionCustomer, 7}},
	}
	err := phase.SetLegs(broken)
	assert.ErrorIs(t, err, ErrDiscontinuousLegChain)
	assert.Equal(t, contiguous, phase.Legs, "stored chain survives a rejected edit")
}

func TestOrderedLegs(t *testing.T) {
	emptyLeg := Leg{From: LocationRef{CollectionEmptyPark, 1}, To: LocationRef{CollectionCustomer, 7}}
	fullLeg := Leg{From: LocationRef{CollectionCustomer, 7}, To: LocationRef{CollectionWharf, 4}}

	routing := Routing{
		Empty: RoutingPhase{Legs: []Leg{emptyLeg}},
		Full:  RoutingPhase{Legs: []Leg{fullLeg}},
	}

	// imports move the full container first, exports position the empty first
	assert.Equal(t, []Leg{fullLeg, emptyLeg}, routing.OrderedLegs(DirectionImport))
	assert.Equal(t, []Leg{emptyLeg, fullLeg}, routing.OrderedLegs(DirectionExport))
}

func TestReplaceDriverAllocationSeedsLegs(t *testing.T) {
	booking := newTestBooking(t, DirectionExport)
	booking.Routing.Empty.Pickup = loc(CollectionEmptyPark, 1)
	require.NoError(t, booking.GenerateRoutingLegs())
	require.NotEmpty(t, booking.Routing.Empty.Legs)

	// no legs supplied: seeded from the routing chain
	require.NoError(t, booking.ReplaceDriverAllocation(DriverAllocation{
		Phase:     PhaseEmpty,
		VehicleID: 12,
	}))

	alloc := booking.GetDriverAllocation(PhaseEmpty)
	require.NotNil(t, alloc)
	assert.Equal(t, booking.Routing.Empty.Legs, alloc.Legs)
	assert.Equal(t, int64(12), alloc.VehicleID)
}

func TestReplaceDriverAllocationKeepsStoredChain(t *testing.T) {
	booking := newTestBooking(t, DirectionExport)

	handEdited := []Leg{{From: LocationRef{CollectionEmptyPark, 1}, To: LocationRef{CollectionCustomer, 7}}}
	require.NoError(t, booking.ReplaceDriverAllocation(DriverAllocation{
		Phase: PhaseEmpty,
		Legs:  handEdited,
	}))

	// a later replace without legs must not discard the stored chain
	require.NoError(t, booking.ReplaceDriverAllocation(DriverAllocation{
		Phase:    PhaseEmpty,
		DriverID: 3,
	}))

	alloc := booking.GetDriverAllocation(PhaseEmpty)
	require.NotNil(t, alloc)
	assert.Equal(t, handEdited, alloc.Legs)
	assert.Equal(t, int64(3), alloc.DriverID)
}

func TestReplaceDriverAllocationInvalidPhase(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)
	err := booking.ReplaceDriverAllocation(DriverAllocation{Phase: "loaded"})
	assert.ErrorIs(t, err, ErrInvalidRoutingPhase)
}
