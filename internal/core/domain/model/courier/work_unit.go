package courier

import (
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// WorkUnitKind tells whether a courier is busy with a single order or a batch.
type WorkUnitKind int

const (
	WorkUnitUnknown WorkUnitKind = iota
	WorkUnitOrder
	WorkUnitBatch
)

func (k WorkUnitKind) String() string {
	switch k {
	case WorkUnitOrder:
		return "order"
	case WorkUnitBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// ParseWorkUnitKind is the inverse of String for the persisted representation.
func ParseWorkUnitKind(s string) (WorkUnitKind, error) {
	switch s {
	case "order":
		return WorkUnitOrder, nil
	case "batch":
		return WorkUnitBatch, nil
	default:
		return WorkUnitUnknown, errs.NewValueIsInvalidErrorWithCause("work unit kind", fmt.Errorf("%q is unknown", s))
	}
}

// WorkUnit references what a courier is currently occupied with. A batch counts
// as one work unit, so batch and single-order assignment share one occupancy check.
type WorkUnit struct {
	kind WorkUnitKind
	id   kernel.UUID
}

func NewOrderWorkUnit(orderID kernel.UUID) (WorkUnit, error) {
	return newWorkUnit(WorkUnitOrder, orderID)
}

func NewBatchWorkUnit(batchID kernel.UUID) (WorkUnit, error) {
	return newWorkUnit(WorkUnitBatch, batchID)
}

// RestoreWorkUnit rebuilds a work unit read from storage.
func RestoreWorkUnit(kind WorkUnitKind, id kernel.UUID) (WorkUnit, error) {
	return newWorkUnit(kind, id)
}

func newWorkUnit(kind WorkUnitKind, id kernel.UUID) (WorkUnit, error) {
	if kind != WorkUnitOrder && kind != WorkUnitBatch {
		return WorkUnit{}, errs.NewValueIsInvalidError("work unit kind")
	}
	if err := id.Validate(); err != nil {
		return WorkUnit{}, err
	}
	return WorkUnit{kind: kind, id: id}, nil
}

func (w WorkUnit) Kind() WorkUnitKind {
	return w.kind
}

func (w WorkUnit) ID() kernel.UUID {
	return w.id
}

func (w WorkUnit) String() string {
	return fmt.Sprintf("%s:%s", w.kind, w.id)
}
