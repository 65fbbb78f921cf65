package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

const fanOutLimit = 8

// Escalation ends orders that ran out of attempts and alerts the requester and
// every operator.
type Escalation struct {
	notifier  ports.NotificationGateway
	operators ports.OperatorDirectory
	logger    *slog.Logger
}

func NewEscalation(notifier ports.NotificationGateway, operators ports.OperatorDirectory, logger *slog.Logger) *Escalation {
	return &Escalation{
		notifier:  notifier,
		operators: operators,
		logger:    logger.With("component", "escalation"),
	}
}

// Exhaust transitions the order Pending -> NoCourierAvailable and, when this call
// won the transition, audits it and fans out notifications. false means another
// writer already moved the order out of Pending or holds an active offer for it.
func (e *Escalation) Exhaust(ctx context.Context, uow DispatchUoW, o *order.Order, attemptsMade int, now time.Time) (bool, error) {
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	// A concurrent sweep may have offered the order after this one read it.
	offers, err := uow.OfferRepository().ListByOrder(ctx, o.ID())
	if err != nil {
		return false, err
	}
	for _, of := range offers {
		if of.IsActive(now) {
			return false, nil
		}
	}

	won, err := uow.OrderRepository().TransitionStatus(ctx, o.ID(), order.Pending, order.NoCourierAvailable)
	if err != nil || !won {
		return false, err
	}

	exhausted := errs.NewExhaustionError(o.ID(), attemptsMade)
	event, err := audit.NewEvent(audit.KindOrderExhausted, o.ID(), attemptsMade, exhausted.Error(), now)
	if err != nil {
		return false, err
	}
	if err = uow.AuditLog().Append(ctx, event); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	e.logger.WarnContext(ctx, "order exhausted", "order_id", o.ID().String(), "attempts", attemptsMade, "error", exhausted)
	e.fanOut(ctx, o, attemptsMade)
	return true, nil
}

// fanOut notifies the requester and all operators concurrently. Delivery is
// best effort: failures are logged and never returned.
func (e *Escalation) fanOut(ctx context.Context, o *order.Order, attemptsMade int) {
	recipients := []kernel.UUID{o.CustomerID()}

	operators, err := e.operators.ListOperators(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "operator directory unavailable", "order_id", o.ID().String(), "error", err)
	}
	for _, op := range operators {
		recipients = append(recipients, op.ID)
	}

	msg := exhaustedMessage(o, attemptsMade)

	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for _, userID := range recipients {
		g.Go(func() error {
			if sendErr := e.notifier.Send(ctx, userID, msg); sendErr != nil {
				e.logger.WarnContext(ctx, "escalation not delivered",
					"order_id", o.ID().String(), "user_id", userID.String(), "error", sendErr)
				return sendErr
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		e.logger.WarnContext(ctx, "escalation fan-out incomplete", "order_id", o.ID().String(), "recipients", len(recipients))
	}
}
