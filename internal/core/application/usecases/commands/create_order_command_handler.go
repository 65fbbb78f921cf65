package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler persists a new Pending order stamped with the server clock.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, clock)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// the next sweep offers the order to nearby couriers
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle validates the command, builds the aggregate and stores it in one transaction.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.Pickup(),
		cmd.Dropoff(),
		cmd.Price(),
		h.clock.Now(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
