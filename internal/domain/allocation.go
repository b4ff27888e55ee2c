package domain

// AllocationStage is a position in the allocation lifecycle of a container's
// stock. Stage sets are direction-specific and totally ordered.
type AllocationStage string

const (
	// Import stages
	StageExpected AllocationStage = "expected"
	StageReceived AllocationStage = "received"
	StagePutAway  AllocationStage = "put_away"

	// Export stages
	StageAllocated  AllocationStage = "allocated"
	StagePicked     AllocationStage = "picked"
	StageDispatched AllocationStage = "dispatched"
)

var importStages = []AllocationStage{StageExpected, StageReceived, StagePutAway}
var exportStages = []AllocationStage{StageAllocated, StagePicked, StageDispatched}

// StagesFor returns the ordered stage set for a direction
func StagesFor(direction Direction) []AllocationStage {
	if direction == DirectionExport {
		return exportStages
	}
	return importStages
}

// stageIndex returns the position of a stage in the direction's order, or -1
// when the stage does not belong to that direction.
func stageIndex(direction Direction, stage AllocationStage) int {
	for i, s := range StagesFor(direction) {
		if s == stage {
			return i
		}
	}
	return -1
}

// TerminalStageFor returns the last stage of the direction's order
func TerminalStageFor(direction Direction) AllocationStage {
	stages := StagesFor(direction)
	return stages[len(stages)-1]
}

// IsTerminalStage reports whether the stage is the final one for the direction
func IsTerminalStage(direction Direction, stage AllocationStage) bool {
	return stage == TerminalStageFor(direction)
}

// ProductLine is one SKU/batch row inside a stock allocation. A figure is
// attached at each stage; quantities never exceed the figure recorded at the
// preceding stage.
type ProductLine struct {
	SKUID       int64  `bson:"skuId" json:"skuId"`
	BatchNumber string `bson:"batchNumber,omitempty" json:"batchNumber,omitempty"`

	ExpectedQty  int `bson:"expectedQty,omitempty" json:"expectedQty,omitempty"`
	AllocatedQty int `bson:"allocatedQty,omitempty" json:"allocatedQty,omitempty"`
	ReceivedQty  int `bson:"receivedQty,omitempty" json:"receivedQty,omitempty"`
	PickedQty    int `bson:"pickedQty,omitempty" json:"pickedQty,omitempty"`

	ExpectedWeight float64 `bson:"expectedWeight,omitempty" json:"expectedWeight,omitempty"`
	ReceivedWeight float64 `bson:"receivedWeight,omitempty" json:"receivedWeight,omitempty"`
	PickedWeight   float64 `bson:"pickedWeight,omitempty" json:"pickedWeight,omitempty"`
}

// lineKey identifies a product line within an allocation
type lineKey struct {
	skuID int64
	batch string
}

// StockAllocation tracks the allocation lifecycle of one container detail's
// stock. One record exists per container detail and advances its stage
// monotonically; it is never re-created, only transitioned.
type StockAllocation struct {
	ContainerDetailID string          `bson:"containerDetailId" json:"containerDetailId"`
	Direction         Direction       `bson:"direction" json:"direction"`
	Stage             AllocationStage `bson:"stage" json:"stage"`
	ProductLines      []ProductLine   `bson:"productLines" json:"productLines"`
}

// NewStockAllocation creates an allocation at the first stage of the
// direction's order. Product lines without a resolvable SKU are dropped.
func NewStockAllocation(containerDetailID string, direction Direction, lines []ProductLine) (*StockAllocation, error) {
	if !direction.IsValid() {
		return nil, ErrInvalidDirection
	}

	return &StockAllocation{
		ContainerDetailID: containerDetailID,
		Direction:         direction,
		Stage:             StagesFor(direction)[0],
		ProductLines:      dropUnresolvedLines(lines),
	}, nil
}

// IsTerminal reports whether the allocation reached its final stage
func (a *StockAllocation) IsTerminal() bool {
	return IsTerminalStage(a.Direction, a.Stage)
}

// Advance moves the allocation to targetStage, merging the incoming product
// line figures. The target must be strictly later in the direction's order;
// a direct jump to the terminal stage is a single legal transition. Incoming
// quantities are validated per SKU and batch against the figure recorded at
// the prior stage.
func (a *StockAllocation) Advance(targetStage AllocationStage, lines []ProductLine) error {
	currentIdx := stageIndex(a.Direction, a.Stage)
	targetIdx := stageIndex(a.Direction, targetStage)

	if targetIdx < 0 {
		return ErrStageNotLater
	}
	if targetIdx <= currentIdx {
		return ErrStageNotLater
	}

	lines = dropUnresolvedLines(lines)

	existing := make(map[lineKey]*ProductLine, len(a.ProductLines))
	for i := range a.ProductLines {
		key := lineKey{a.ProductLines[i].SKUID, a.ProductLines[i].BatchNumber}
		existing[key] = &a.ProductLines[i]
	}

	// Validate all incoming lines before mutating anything
	for _, line := range lines {
		if err := a.validateLine(line, existing[lineKey{line.SKUID, line.BatchNumber}]); err != nil {
			return err
		}
	}

	for _, line := range lines {
		key := lineKey{line.SKUID, line.BatchNumber}
		if prior, ok := existing[key]; ok {
			mergeLine(prior, line)
		} else {
			a.ProductLines = append(a.ProductLines, line)
		}
	}

	a.Stage = targetStage
	return nil
}

// validateLine checks the monotonic-consumption invariant for one incoming
// line against its previously recorded figures.
func (a *StockAllocation) validateLine(incoming ProductLine, prior *ProductLine) error {
	allocatedQty := incoming.AllocatedQty
	expectedQty := incoming.ExpectedQty
	if prior != nil {
		if prior.AllocatedQty > 0 {
			allocatedQty = prior.AllocatedQty
		}
		if prior.ExpectedQty > 0 {
			expectedQty = prior.ExpectedQty
		}
	}

	if incoming.PickedQty > 0 && incoming.PickedQty > allocatedQty {
		return ErrQuantityExceedsPriorStage
	}
	if incoming.ReceivedQty > 0 && incoming.ReceivedQty > expectedQty {
		return ErrQuantityExceedsPriorStage
	}
	return nil
}

// mergeLine overlays stage figures from the incoming line onto the stored one
func mergeLine(stored *ProductLine, incoming ProductLine) {
	if incoming.ExpectedQty > 0 {
		stored.ExpectedQty = incoming.ExpectedQty
	}
	if incoming.AllocatedQty > 0 {
		stored.AllocatedQty = incoming.AllocatedQty
	}
	if incoming.ReceivedQty > 0 {
		stored.ReceivedQty = incoming.ReceivedQty
	}
	if incoming.PickedQty > 0 {
		stored.PickedQty = incoming.PickedQty
	}
	if incoming.ExpectedWeight > 0 {
		stored.ExpectedWeight = incoming.ExpectedWeight
	}
	if incoming.ReceivedWeight > 0 {
		stored.ReceivedWeight = incoming.ReceivedWeight
	}
	if incoming.PickedWeight > 0 {
		stored.PickedWeight = incoming.PickedWeight
	}
}

// dropUnresolvedLines removes product lines without a resolvable SKU id.
// Stock allocation is entered incrementally in the booking flow, so an
// unresolved line is skipped rather than rejected.
func dropUnresolvedLines(lines []ProductLine) []ProductLine {
	kept := make([]ProductLine, 0, len(lines))
	for _, line := range lines {
		if line.SKUID > 0 {
			kept = append(kept, line)
		}
	}
	return kept
}
