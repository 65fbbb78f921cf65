package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/policy"
)

// Message is a user-facing notification.
type Message struct {
	Title string
	Body  string
	// Data carries machine-readable context such as the order id and attempt count.
	Data map[string]string
}

// NotificationGateway delivers best-effort notifications. Callers log failures
// and never roll back the transition that triggered the message.
type NotificationGateway interface {
	Send(ctx context.Context, userID kernel.UUID, msg Message) error
}

// Operator is an account that receives escalations.
type Operator struct {
	ID    kernel.UUID
	Name  string
	Email string
}

// OperatorDirectory lists the operator accounts.
type OperatorDirectory interface {
	ListOperators(ctx context.Context) ([]Operator, error)
}

// PolicyProvider returns the current dispatch policy. It is read on every sweep.
type PolicyProvider interface {
	Current(ctx context.Context) (policy.Policy, error)
}

// Clock is the server clock. Client supplied timestamps are never trusted.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
