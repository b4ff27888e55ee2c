package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagesFor(t *testing.T) {
	assert.Equal(t, []AllocationStage{StageExpected, StageReceived, StagePutAway}, StagesFor(DirectionImport))
	assert.Equal(t, []AllocationStage{StageAllocated, StagePicked, StageDispatched}, StagesFor(DirectionExport))
}

func TestTerminalStageFor(t *testing.T) {
	assert.Equal(t, StagePutAway, TerminalStageFor(DirectionImport))
	assert.Equal(t, StageDispatched, TerminalStageFor(DirectionExport))
	assert.True(t, IsTerminalStage(DirectionImport, StagePutAway))
	assert.False(t, IsTerminalStage(DirectionImport, StageReceived))
}

func TestNewStockAllocation(t *testing.T) {
	lines := []ProductLine{
		{SKUID: 100, ExpectedQty: 10},
		{SKUID: 0, ExpectedQty: 5},
		{SKUID: -2, ExpectedQty: 3},
		{SKUID: 200, BatchNumber: "B-1", ExpectedQty: 4},
	}

	alloc, err := NewStockAllocation("cd-1", DirectionImport, lines)
	require.NoError(t, err)

	assert.Equal(t, StageExpected, alloc.Stage)

	// unresolved SKUs are dropped silently, not rejected
	require.Len(t, alloc.ProductLines, 2)
	assert.Equal(t, int64(100), alloc.ProductLines[0].SKUID)
	assert.Equal(t, int64(200), alloc.ProductLines[1].SKUID)
}

func TestNewStockAllocationInvalidDirection(t *testing.T) {
	_, err := NewStockAllocation("cd-1", "sideways", nil)
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestAdvanceStageOrdering(t *testing.T) {
	tests := []struct {
		name    string
		current AllocationStage
		target  AllocationStage
		wantErr error
	}{
		{"forward one step", StageAllocated, StagePicked, nil},
		{"jump to terminal", StageAllocated, StageDispatched, nil},
		{"same stage", StagePicked, StagePicked, ErrStageNotLater},
		{"backwards", StagePicked, StageAllocated, ErrStageNotLater},
		{"stage from the other direction", StageAllocated, StageReceived, ErrStageNotLater},
		{"unknown stage", StageAllocated, "loaded", ErrStageNotLater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := &StockAllocation{
				ContainerDetailID: "cd-1",
				Direction:         DirectionExport,
				Stage:             tt.current,
			}

			err := alloc.Advance(tt.target, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.current, alloc.Stage)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.target, alloc.Stage)
			}
		})
	}
}

func TestAdvancePickedExceedsAllocated(t *testing.T) {
	alloc := &StockAllocation{
		ContainerDetailID: "cd-1",
		Direction:         DirectionExport,
		Stage:             StageAllocated,
		ProductLines:      []ProductLine{{SKUID: 100, AllocatedQty: 10}},
	}

	err := alloc.Advance(StagePicked, []ProductLine{{SKUID: 100, PickedQty: 12}})
	assert.ErrorIs(t, err, ErrQuantityExceedsPriorStage)
	assert.Equal(t, StageAllocated, alloc.Stage)

	require.NoError(t, alloc.Advance(StagePicked, []ProductLine{{SKUID: 100, PickedQty: 10}}))
	assert.Equal(t, StagePicked, alloc.Stage)
	assert.Equal(t, 10, alloc.ProductLines[0].PickedQty)
}

func TestAdvanceReceivedExceedsExpected(t *testing.T) {
	alloc := &StockAllocation{
		ContainerDetailID: "cd-1",
		Direction:         DirectionImport,
		Stage:             StageExpected,
		ProductLines:      []ProductLine{{SKUID: 100, ExpectedQty: 5}},
	}

	// the stored figure wins over whatever the incoming line claims
	err := alloc.Advance(StageReceived, []ProductLine{{SKUID: 100, ExpectedQty: 9, ReceivedQty: 6}})
	assert.ErrorIs(t, err, ErrQuantityExceedsPriorStage)

	require.NoError(t, alloc.Advance(StageReceived, []ProductLine{{SKUID: 100, ReceivedQty: 5}}))
}

func TestAdvanceValidatesBeforeMutating(t *testing.T) {
	alloc := &StockAllocation{
		ContainerDetailID: "cd-1",
		Direction:         DirectionExport,
		Stage:             StageAllocated,
		ProductLines: []ProductLine{
			{SKUID: 100, AllocatedQty: 10},
			{SKUID: 200, AllocatedQty: 5},
		},
	}

	err := alloc.Advance(StagePicked, []ProductLine{
		{SKUID: 100, PickedQty: 8},
		{SKUID: 200, PickedQty: 6},
	})
	assert.ErrorIs(t, err, ErrQuantityExceedsPriorStage)

	// the valid first line must not have been merged
	assert.Equal(t, StageAllocated, alloc.Stage)
	assert.Zero(t, alloc.ProductLines[0].PickedQty)
}

func TestAdvanceKeysLinesBySKUAndBatch(t *testing.T) {
	alloc := &StockAllocation{
		ContainerDetailID: "cd-1",
		Direction:         DirectionExport,
		Stage:             StageAllocated,
		ProductLines: []ProductLine{
			{SKUID: 100, BatchNumber: "B-1", AllocatedQty: 4},
			{SKUID: 100, BatchNumber: "B-2", AllocatedQty: 6},
		},
	}

	require.NoError(t, alloc.Advance(StagePicked, []ProductLine{
		{SKUID: 100, BatchNumber: "B-1", PickedQty: 4},
		{SKUID: 100, BatchNumber: "B-2", PickedQty: 6},
	}))

	assert.Equal(t, 4, alloc.ProductLines[0].PickedQty)
	assert.Equal(t, 6, alloc.ProductLines[1].PickedQty)

	// batch B-1 only allocated 4
	alloc.Stage = StageAllocated
	err := alloc.Advance(StagePicked, []ProductLine{{SKUID: 100, BatchNumber: "B-1", PickedQty: 5}})
	assert.ErrorIs(t, err, ErrQuantityExceedsPriorStage)
}

func TestAdvanceAppendsNewLines(t *testing.T) {
	alloc := &StockAllocation{
		ContainerDetailID: "cd-1",
		Direction:         DirectionImport,
		Stage:             StageExpected,
		ProductLines:      []ProductLine{{SKUID: 100, ExpectedQty: 5}},
	}

	require.NoError(t, alloc.Advance(StageReceived, []ProductLine{
		{SKUID: 100, ReceivedQty: 5},
		{SKUID: 300, ExpectedQty: 2, ReceivedQty: 2},
		{SKUID: 0, ReceivedQty: 9},
	}))

	require.Len(t, alloc.ProductLines, 2)
	assert.Equal(t, int64(300), alloc.ProductLines[1].SKUID)
}

func TestAdvanceMergesWeights(t *testing.T) {
	alloc := &StockAllocation{
		ContainerDetailID: "cd-1",
		Direction:         DirectionImport,
		Stage:             StageExpected,
		ProductLines:      []ProductLine{{SKUID: 100, ExpectedQty: 5, ExpectedWeight: 120.5}},
	}

	require.NoError(t, alloc.Advance(StagePutAway, []ProductLine{
		{SKUID: 100, ReceivedQty: 5, ReceivedWeight: 118.2},
	}))

	line := alloc.ProductLines[0]
	assert.Equal(t, 120.5, line.ExpectedWeight)
	assert.Equal(t, 118.2, line.ReceivedWeight)
	assert.True(t, alloc.IsTerminal())
}
