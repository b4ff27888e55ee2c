package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T, direction Direction) *Booking {
	t.Helper()
	booking, err := NewBooking(
		"BKG-20260101120000.000",
		"tenant-a",
		"BKG-A1B2C3",
		direction,
		loc(CollectionCustomer, 5),
		loc(CollectionCustomer, 9),
	)
	require.NoError(t, err)
	booking.ClearDomainEvents()
	return booking
}

func TestNewBooking(t *testing.T) {
	booking, err := NewBooking("BKG-1", "tenant-a", "BKG-A1B2C3", DirectionImport, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, booking.Status)
	assert.Equal(t, int64(1), booking.Version)
	assert.Equal(t, "tenant-a", booking.TenantID)

	events := booking.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "freight.booking.created", events[0].EventType())
}

func TestNewBookingInvalidDirection(t *testing.T) {
	_, err := NewBooking("BKG-1", "tenant-a", "BKG-A1B2C3", "transit", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestStatusCanTransitionTo(t *testing.T) {
	statuses := []BookingStatus{StatusDraft, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}

	legal := map[BookingStatus][]BookingStatus{
		StatusDraft:      {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusInProgress, StatusCancelled},
		StatusInProgress: {StatusCompleted, StatusCancelled},
		StatusCompleted:  {},
		StatusCancelled:  {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := false
			for _, allowed := range legal[from] {
				if to == allowed {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusNext(t *testing.T) {
	assert.Equal(t, StatusConfirmed, StatusDraft.Next())
	assert.Equal(t, StatusInProgress, StatusConfirmed.Next())
	assert.Equal(t, StatusCompleted, StatusInProgress.Next())
	assert.Equal(t, BookingStatus(""), StatusCompleted.Next())
	assert.Equal(t, BookingStatus(""), StatusCancelled.Next())
}

func TestTransitionTo(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)

	require.NoError(t, booking.TransitionTo(StatusConfirmed))
	assert.Equal(t, StatusConfirmed, booking.Status)
	require.NotNil(t, booking.ConfirmedAt)

	require.NoError(t, booking.TransitionTo(StatusInProgress))
	require.NoError(t, booking.TransitionTo(StatusCompleted))
	require.NotNil(t, booking.CompletedAt)

	events := booking.GetDomainEvents()
	require.Len(t, events, 3)
	for _, event := range events {
		assert.Equal(t, "freight.booking.status-changed", event.EventType())
	}
}

func TestTransitionToIllegal(t *testing.T) {
	tests := []struct {
		name   string
		status BookingStatus
		target BookingStatus
	}{
		{"skip confirmed", StatusDraft, StatusInProgress},
		{"skip in_progress", StatusConfirmed, StatusCompleted},
		{"backwards", StatusConfirmed, StatusDraft},
		{"out of completed", StatusCompleted, StatusDraft},
		{"cancel completed", StatusCompleted, StatusCancelled},
		{"unknown status", StatusDraft, "archived"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := newTestBooking(t, DirectionImport)
			booking.Status = tt.status

			err := booking.TransitionTo(tt.target)
			assert.ErrorIs(t, err, ErrIllegalStatusTransition)
			assert.Equal(t, tt.status, booking.Status)
		})
	}
}

func TestCancel(t *testing.T) {
	// cancellation is legal from every non-terminal state
	for _, status := range []BookingStatus{StatusDraft, StatusConfirmed, StatusInProgress} {
		booking := newTestBooking(t, DirectionImport)
		booking.Status = status

		require.NoError(t, booking.Cancel("customer request"))
		assert.Equal(t, StatusCancelled, booking.Status)
		assert.Equal(t, "customer request", booking.CancelReason)
		require.NotNil(t, booking.CancelledAt)
	}
}

func TestCancelTerminal(t *testing.T) {
	for _, status := range []BookingStatus{StatusCompleted, StatusCancelled} {
		booking := newTestBooking(t, DirectionImport)
		booking.Status = status

		err := booking.Cancel("too late")
		assert.ErrorIs(t, err, ErrIllegalStatusTransition)
	}
}

func TestTerminalBookingRejectsMutations(t *testing.T) {
	for _, status := range []BookingStatus{StatusCompleted, StatusCancelled} {
		booking := newTestBooking(t, DirectionImport)
		booking.ContainerDetails = []ContainerDetail{{ID: "cd-1", ContainerNumber: "MSCU1234567"}}
		booking.Status = status

		assert.ErrorIs(t, booking.UpdateEndpoints(loc(CollectionCustomer, 1), nil), ErrBookingLocked)
		assert.ErrorIs(t, booking.UpdateRoutingPhase(PhaseEmpty, RoutingPhase{}), ErrBookingLocked)
		assert.ErrorIs(t, booking.GenerateRoutingLegs(), ErrBookingLocked)
		assert.ErrorIs(t, booking.UpsertContainerDetail(ContainerDetail{ID: "cd-2"}), ErrBookingLocked)
		assert.ErrorIs(t, booking.AdvanceStockAllocation("cd-1", StageReceived, nil), ErrBookingLocked)
		assert.ErrorIs(t, booking.ReplaceDriverAllocation(DriverAllocation{Phase: PhaseEmpty}), ErrBookingLocked)
	}
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		status BookingStatus
		want   bool
	}{
		{StatusDraft, true},
		{StatusCancelled, true},
		{StatusConfirmed, false},
		{StatusInProgress, false},
		{StatusCompleted, false},
	}

	for _, tt := range tests {
		booking := newTestBooking(t, DirectionImport)
		booking.Status = tt.status
		assert.Equal(t, tt.want, booking.CanDelete(), "status %s", tt.status)

		err := booking.MarkDeleted()
		if tt.want {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, ErrBookingNotDeletable)
		}
	}
}

func TestUpsertContainerDetail(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)

	require.NoError(t, booking.UpsertContainerDetail(ContainerDetail{
		ID:              "cd-1",
		ContainerNumber: "MSCU1234567",
		WeightGross:     24000,
		WeightTare:      2200,
	}))

	detail := booking.GetContainerDetail("cd-1")
	require.NotNil(t, detail)
	assert.Equal(t, float64(21800), detail.WeightNet)

	// update replaces fields but keeps the allocation record
	detail.StockAllocation = &StockAllocation{
		ContainerDetailID: "cd-1",
		Direction:         DirectionImport,
		Stage:             StageExpected,
	}
	require.NoError(t, booking.UpsertContainerDetail(ContainerDetail{
		ID:              "cd-1",
		ContainerNumber: "MSCU1234567",
		SizeID:          40,
	}))

	detail = booking.GetContainerDetail("cd-1")
	assert.Equal(t, int64(40), detail.SizeID)
	require.NotNil(t, detail.StockAllocation)
	assert.Equal(t, StageExpected, detail.StockAllocation.Stage)
}

func TestUpdateRoutingPhaseManualLegs(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)
	require.NoError(t, booking.GenerateRoutingLegs())
	require.True(t, booking.Routing.Full.LegsDerived)

	manual := []Leg{
		{From: LocationRef{CollectionCustomer, 5}, To: LocationRef{CollectionWarehouse, 3}},
		{From: LocationRef{CollectionWarehouse, 3}, To: LocationRef{CollectionCustomer, 9}},
	}
	require.NoError(t, booking.UpdateRoutingPhase(PhaseFull, RoutingPhase{Legs: manual}))

	assert.Equal(t, manual, booking.Routing.Full.Legs)
	assert.False(t, booking.Routing.Full.LegsDerived)
}

func TestUpdateRoutingPhaseRejectsBrokenChain(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)
	require.NoError(t, booking.GenerateRoutingLegs())
	derived := booking.Routing.Full.Legs

	broken := []Leg{
		{From: LocationRef{CollectionCustomer, 5}, To: LocationRef{CollectionWarehouse, 3}},
		{From: LocationRef{CollectionWarehouse, 8}, To: LocationRef{CollectionCustomer, 9}},
	}
	err := booking.UpdateRoutingPhase(PhaseFull, RoutingPhase{Legs: broken})
	assert.ErrorIs(t, err, ErrDiscontinuousLegChain)
	assert.Equal(t, derived, booking.Routing.Full.Legs)
}

func TestUpsertContainerDetailAssignsIDs(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)

	require.NoError(t, booking.UpsertContainerDetail(ContainerDetail{ContainerNumber: "MSCU1234567"}))
	require.NoError(t, booking.UpsertContainerDetail(ContainerDetail{ContainerNumber: "MSCU7654321"}))

	require.Len(t, booking.ContainerDetails, 2)
	assert.NotEmpty(t, booking.ContainerDetails[0].ID)
	assert.NotEmpty(t, booking.ContainerDetails[1].ID)
	assert.NotEqual(t, booking.ContainerDetails[0].ID, booking.ContainerDetails[1].ID)
}

func TestUpsertContainerDetailTareNotBelowGross(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)

	err := booking.UpsertContainerDetail(ContainerDetail{
		ID:          "cd-1",
		WeightGross: 2000,
		WeightTare:  2000,
	})
	assert.ErrorIs(t, err, ErrTareNotBelowGross)
	assert.Nil(t, booking.GetContainerDetail("cd-1"))
}

func TestUpsertContainerDetailFrozen(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)
	booking.ContainerDetails = []ContainerDetail{{
		ID: "cd-1",
		StockAllocation: &StockAllocation{
			ContainerDetailID: "cd-1",
			Direction:         DirectionImport,
			Stage:             StagePutAway,
		},
	}}

	err := booking.UpsertContainerDetail(ContainerDetail{ID: "cd-1", SizeID: 20})
	assert.ErrorIs(t, err, ErrContainerDetailFrozen)
}

func TestAdvanceStockAllocationCreatesRecord(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)
	booking.ContainerDetails = []ContainerDetail{{ID: "cd-1"}}

	lines := []ProductLine{{SKUID: 100, ExpectedQty: 10}}
	require.NoError(t, booking.AdvanceStockAllocation("cd-1", StageExpected, lines))

	alloc := booking.GetContainerDetail("cd-1").StockAllocation
	require.NotNil(t, alloc)
	assert.Equal(t, StageExpected, alloc.Stage)
	assert.Equal(t, lines, alloc.ProductLines)
}

func TestAdvanceStockAllocationUnknownContainer(t *testing.T) {
	booking := newTestBooking(t, DirectionImport)
	err := booking.AdvanceStockAllocation("missing", StageReceived, nil)
	assert.ErrorIs(t, err, ErrContainerDetailNotFound)
}
