package commands

import (
	"context"
)

// UpdateCourierPresenceCommandHandler stores presence reports. The aggregate
// validates the report; the repository writes only the presence columns so a
// report never races with penalties or work unit changes.
type UpdateCourierPresenceCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewUpdateCourierPresenceCommandHandler(uowFactory CourierUoWFactory) UpdateCourierPresenceCommandHandler {
	return UpdateCourierPresenceCommandHandler{uowFactory: uowFactory}
}

func (h *UpdateCourierPresenceCommandHandler) Handle(ctx context.Context, cmd UpdateCourierPresenceCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CourierRepository()
	c, err := repo.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}
	if err = c.ReportPresence(cmd.Online(), cmd.Location()); err != nil {
		return err
	}

	if err = repo.UpdatePresence(ctx, c.ID(), c.IsOnline(), cmd.Location()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
