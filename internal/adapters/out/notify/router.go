package notify

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// OperatorSender delivers a message to an operator account.
type OperatorSender interface {
	SendToOperator(ctx context.Context, op ports.Operator, msg ports.Message) error
}

// Router implements ports.NotificationGateway. Operators listed in the
// directory get e-mail; every other user gets a push message.
type Router struct {
	push      ports.NotificationGateway
	email     OperatorSender
	operators ports.OperatorDirectory
	logger    *slog.Logger
}

func NewRouter(push ports.NotificationGateway, email OperatorSender, operators ports.OperatorDirectory, logger *slog.Logger) *Router {
	return &Router{
		push:      push,
		email:     email,
		operators: operators,
		logger:    logger.With("component", "notification_router"),
	}
}

func (r *Router) Send(ctx context.Context, userID kernel.UUID, msg ports.Message) error {
	if r.email != nil {
		op, found, err := r.lookupOperator(ctx, userID)
		if err != nil {
			// Fall through to push rather than lose the message.
			r.logger.WarnContext(ctx, "operator lookup failed", "user_id", userID.String(), "error", err)
		}
		if found {
			return r.email.SendToOperator(ctx, op, msg)
		}
	}
	return r.push.Send(ctx, userID, msg)
}

func (r *Router) lookupOperator(ctx context.Context, userID kernel.UUID) (ports.Operator, bool, error) {
	operators, err := r.operators.ListOperators(ctx)
	if err != nil {
		return ports.Operator{}, false, err
	}
	for _, op := range operators {
		if op.ID.IsEqual(userID) {
			return op, true, nil
		}
	}
	return ports.Operator{}, false, nil
}
