package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
)

// CreateCourierCommandHandler persists new couriers.
type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	c, err := courier.NewCourier(cmd.CourierID(), cmd.Name())
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

	if err = uow.CourierRepository().Add(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
