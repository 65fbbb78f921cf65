package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CancelOrderCommandHandler cancels an unassigned order and withdraws its pending
// offers in the same transaction, so no courier can accept it afterwards.
type CancelOrderCommandHandler struct {
	uowFactory DispatchUoWFactory
	notifier   ports.NotificationGateway
	clock      ports.Clock
	metrics    ports.DispatchMetrics
	logger     *slog.Logger
}

func NewCancelOrderCommandHandler(
	uowFactory DispatchUoWFactory,
	notifier ports.NotificationGateway,
	clock ports.Clock,
	metrics ports.DispatchMetrics,
	logger *slog.Logger,
) *CancelOrderCommandHandler {
	return &CancelOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		clock:      clock,
		metrics:    metrics,
		logger:     logger.With("component", "cancel_order"),
	}
}

// Handle fails with order.ErrNotRequester for anyone but the customer, and with
// errs.ConflictError once a courier holds the order or the order has left Pending.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if err = o.Cancel(cmd.RequesterID()); err != nil {
		return err
	}

	cancelled, err := uow.OrderRepository().TransitionStatus(ctx, o.ID(), order.Pending, order.Cancelled)
	if err != nil {
		return err
	}
	if !cancelled {
		return errs.NewConflictError("order", o.ID().String(), "no longer pending")
	}

	withdrawn, err := uow.OfferRepository().ResolvePendingForOrder(ctx, o.ID(), nil, offer.ReasonCancelled, now)
	if err != nil {
		return err
	}

	event, err := audit.NewEvent(audit.KindOrderCancelled, o.ID(), 0,
		"cancelled by requester "+cmd.RequesterID().String(), now)
	if err != nil {
		return err
	}
	if err = uow.AuditLog().Append(ctx, event); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, of := range withdrawn {
		h.metrics.OfferResolved(of.Status().String(), string(of.FailureReason()))
		if sendErr := h.notifier.Send(ctx, of.CourierID(), orderCancelledMessage(of)); sendErr != nil {
			h.logger.WarnContext(ctx, "withdrawal not delivered",
				"offer_id", of.ID().String(), "courier_id", of.CourierID().String(), "error", sendErr)
		}
	}

	h.logger.InfoContext(ctx, "order cancelled", "order_id", o.ID().String(), "withdrawn_offers", len(withdrawn))
	return nil
}
