package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrConfirmBatchCommandIsNotConstructed = errors.New(
	"ConfirmBatchCommand must be created via NewConfirmBatchCommand constructor",
)

// ConfirmBatchCommand assigns several orders to one courier as a multi-stop batch.
// Orders are visited in the order given.
type ConfirmBatchCommand struct { //nolint:recvcheck //using for validation
	batchID   kernel.UUID
	courierID kernel.UUID
	orderIDs  []kernel.UUID

	guard guard.ConstructorGuard
}

func NewConfirmBatchCommand(batchID, courierID kernel.UUID, orderIDs []kernel.UUID) (ConfirmBatchCommand, error) {
	cmd := ConfirmBatchCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setIDs(batchID, courierID),
		cmd.setOrderIDs(orderIDs),
	); err != nil {
		return ConfirmBatchCommand{}, err
	}

	return cmd, nil
}

func (c ConfirmBatchCommand) Validate() error {
	return c.guard.Validate(ErrConfirmBatchCommandIsNotConstructed)
}

func (c ConfirmBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}

func (c ConfirmBatchCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c ConfirmBatchCommand) OrderIDs() []kernel.UUID {
	out := make([]kernel.UUID, len(c.orderIDs))
	copy(out, c.orderIDs)
	return out
}

func (c *ConfirmBatchCommand) setIDs(batchID, courierID kernel.UUID) error {
	if err := errors.Join(batchID.Validate(), courierID.Validate()); err != nil {
		return err
	}

	c.batchID = batchID
	c.courierID = courierID
	return nil
}

func (c *ConfirmBatchCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) < batch.MinSize {
		return errs.NewValueIsOutOfRangeError("order ids", len(orderIDs), batch.MinSize, "max batch size")
	}

	seen := make(map[kernel.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("order ids", fmt.Errorf("%s listed twice", id))
		}
		seen[id] = struct{}{}
	}

	c.orderIDs = append([]kernel.UUID(nil), orderIDs...)
	return nil
}
