package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ConfirmBatchCommandHandler turns a batch proposal into an assignment.
//
// Everything happens in one transaction: the batch is stored, every member order
// is claimed for the courier with its stop sequence, pending offers of the members
// and of the courier are closed as superseded, and the courier's work unit is set
// to the batch. If any conditional write finds its row already changed, the whole
// confirmation rolls back with errs.ConflictError.
type ConfirmBatchCommandHandler struct {
	uowFactory DispatchUoWFactory
	policies   ports.PolicyProvider
	notifier   ports.NotificationGateway
	clock      ports.Clock
	metrics    ports.DispatchMetrics
	logger     *slog.Logger
}

func NewConfirmBatchCommandHandler(
	uowFactory DispatchUoWFactory,
	policies ports.PolicyProvider,
	notifier ports.NotificationGateway,
	clock ports.Clock,
	metrics ports.DispatchMetrics,
	logger *slog.Logger,
) *ConfirmBatchCommandHandler {
	return &ConfirmBatchCommandHandler{
		uowFactory: uowFactory,
		policies:   policies,
		notifier:   notifier,
		clock:      clock,
		metrics:    metrics,
		logger:     logger.With("component", "confirm_batch"),
	}
}

func (h *ConfirmBatchCommandHandler) Handle(ctx context.Context, cmd ConfirmBatchCommand) (*batch.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	pol, err := h.policies.Current(ctx)
	if err != nil {
		return nil, err
	}
	orderIDs := cmd.OrderIDs()
	if len(orderIDs) > pol.MaxBatchSize {
		return nil, errs.NewValueIsOutOfRangeError("order ids", len(orderIDs), batch.MinSize, pol.MaxBatchSize)
	}

	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	c, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return nil, err
	}
	if !c.IsOnline() || c.WorkUnit() != nil {
		return nil, errs.NewConflictError("courier", c.ID().String(), "not online or already busy")
	}

	members, err := h.loadMembers(ctx, uow, orderIDs)
	if err != nil {
		return nil, err
	}

	var (
		totalPrice    int64
		totalDistance float64
	)
	for _, m := range members {
		totalPrice += m.Price()
		totalDistance += m.TripDistanceKm()
	}

	b, err := batch.NewBatch(cmd.BatchID(), c.ID(), orderIDs, totalPrice, totalDistance, now)
	if err != nil {
		return nil, err
	}

	superseded, err := h.assign(ctx, uow, b, c, members, now)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.afterCommit(ctx, b, members, superseded)
	return b, nil
}

// loadMembers returns the orders in the requested sequence.
func (h *ConfirmBatchCommandHandler) loadMembers(
	ctx context.Context,
	uow DispatchUoW,
	orderIDs []kernel.UUID,
) ([]*order.Order, error) {
	found, err := uow.OrderRepository().GetMany(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[kernel.UUID]*order.Order, len(found))
	for _, o := range found {
		byID[o.ID()] = o
	}

	members := make([]*order.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		o, ok := byID[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		if !o.IsUnassigned() {
			return nil, errs.NewConflictError("order", id.String(), "not pending or already assigned")
		}
		members = append(members, o)
	}
	return members, nil
}

func (h *ConfirmBatchCommandHandler) assign(
	ctx context.Context,
	uow DispatchUoW,
	b *batch.Batch,
	c *courier.Courier,
	members []*order.Order,
	now time.Time,
) ([]*offer.Offer, error) {
	if err := uow.BatchRepository().Add(ctx, b); err != nil {
		return nil, err
	}

	var superseded []*offer.Offer
	events := make([]audit.Event, 0, len(members))

	for i, stop := range b.Stops() {
		claimed, err := uow.OrderRepository().ClaimForBatch(ctx, stop.OrderID, c.ID(), b.ID(), stop.Sequence)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, errs.NewConflictError("order", stop.OrderID.String(), "claimed concurrently")
		}
		if err = members[i].JoinBatch(b.ID(), c.ID(), stop.Sequence); err != nil {
			return nil, err
		}

		closed, err := uow.OfferRepository().ResolvePendingForOrder(ctx, stop.OrderID, nil, offer.ReasonSuperseded, now)
		if err != nil {
			return nil, err
		}
		superseded = append(superseded, closed...)

		event, err := audit.NewEvent(audit.KindBatchConfirmed, stop.OrderID, 0,
			fmt.Sprintf("batch %s stop %d of %d", b.ID(), stop.Sequence, b.Size()), now)
		if err != nil {
			return nil, err
		}
		events = append(events, event.WithCourier(c.ID()))
	}

	unit, err := courier.NewBatchWorkUnit(b.ID())
	if err != nil {
		return nil, err
	}
	occupied, err := uow.CourierRepository().Occupy(ctx, c.ID(), unit)
	if err != nil {
		return nil, err
	}
	if !occupied {
		return nil, errs.NewConflictError("courier", c.ID().String(), "took other work concurrently")
	}

	// Occupy holds the courier's offer lock, so no offer created before it can
	// escape this close; offers of other orders would give the courier a second job.
	closed, err := uow.OfferRepository().ResolvePendingForCourier(ctx, c.ID(), offer.ReasonSuperseded, now)
	if err != nil {
		return nil, err
	}
	superseded = append(superseded, closed...)

	if err = uow.AuditLog().Append(ctx, events...); err != nil {
		return nil, err
	}
	return superseded, nil
}

func (h *ConfirmBatchCommandHandler) afterCommit(
	ctx context.Context,
	b *batch.Batch,
	members []*order.Order,
	superseded []*offer.Offer,
) {
	h.logger.InfoContext(ctx, "batch confirmed",
		"batch_id", b.ID().String(), "courier_id", b.CourierID().String(),
		"size", b.Size(), "superseded_offers", len(superseded))

	for _, of := range superseded {
		h.metrics.OfferResolved(of.Status().String(), string(of.FailureReason()))
		h.send(ctx, of.CourierID(), batchWithdrawnMessage(of))
	}
	for i, m := range members {
		h.send(ctx, m.CustomerID(), batchAssignedMessage(m, b, i+1))
	}
}

func (h *ConfirmBatchCommandHandler) send(ctx context.Context, userID kernel.UUID, msg ports.Message) {
	if err := h.notifier.Send(ctx, userID, msg); err != nil {
		h.logger.WarnContext(ctx, "notification not delivered",
			"user_id", userID.String(), "type", msg.Data["type"], "error", err)
	}
}
