package notify

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// LogGateway writes messages to the log instead of delivering them. It stands
// in for a channel that has no credentials configured.
type LogGateway struct {
	logger *slog.Logger
}

func NewLogGateway(logger *slog.Logger) *LogGateway {
	return &LogGateway{logger: logger.With("component", "log_gateway")}
}

func (g *LogGateway) Send(ctx context.Context, userID kernel.UUID, msg ports.Message) error {
	g.logger.InfoContext(ctx, "notification", "user_id", userID.String(), "title", msg.Title, "body", msg.Body, "data", msg.Data)
	return nil
}

func (g *LogGateway) SendToOperator(ctx context.Context, op ports.Operator, msg ports.Message) error {
	g.logger.InfoContext(ctx, "operator notification", "operator_id", op.ID.String(), "email", op.Email, "title", msg.Title, "body", msg.Body)
	return nil
}
