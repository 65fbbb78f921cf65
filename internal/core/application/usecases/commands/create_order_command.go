package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a customer request for a delivery.
// The order enters Pending and is picked up by the next dispatch sweep.
//
// Example:
//
//	pickup, _ := order.NewAddress(pickupLocation, "Alexanderplatz 1")
//	dropoff, _ := order.NewAddress(dropoffLocation, "Torstrasse 12")
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, pickup, dropoff, 1250)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	customerID kernel.UUID
	pickup     order.Address
	dropoff    order.Address
	price      int64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the identifiers, both addresses and a
// non-negative price given in minor currency units.
func NewCreateOrderCommand(
	orderID, customerID kernel.UUID,
	pickup, dropoff order.Address,
	price int64,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setIDs(orderID, customerID),
		orderCommand.setAddresses(pickup, dropoff),
		orderCommand.setPrice(price),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) Pickup() order.Address {
	return c.pickup
}

func (c CreateOrderCommand) Dropoff() order.Address {
	return c.dropoff
}

// Price returns the price in minor currency units.
func (c CreateOrderCommand) Price() int64 {
	return c.price
}

func (c *CreateOrderCommand) setIDs(orderID, customerID kernel.UUID) error {
	if err := errors.Join(orderID.Validate(), customerID.Validate()); err != nil {
		return err
	}

	c.orderID = orderID
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setAddresses(pickup, dropoff order.Address) error {
	if err := errors.Join(pickup.Validate(), dropoff.Validate()); err != nil {
		return err
	}

	c.pickup = pickup
	c.dropoff = dropoff
	return nil
}

func (c *CreateOrderCommand) setPrice(price int64) error {
	if price < 0 {
		return errs.NewValueIsOutOfRangeError("price", price, 0, "unbounded")
	}

	c.price = price
	return nil
}
