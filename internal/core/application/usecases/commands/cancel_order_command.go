package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand withdraws a Pending order on behalf of its requester.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	requesterID kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID, requesterID kernel.UUID) (CancelOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), requesterID.Validate()); err != nil {
		return CancelOrderCommand{}, err
	}

	return CancelOrderCommand{
		orderID:     orderID,
		requesterID: requesterID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CancelOrderCommand) RequesterID() kernel.UUID {
	return c.requesterID
}
