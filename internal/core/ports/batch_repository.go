package ports

import (
	"context"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
)

type BatchRepository interface {
	Add(ctx context.Context, b *batch.Batch) error
	Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error)
}

// AuditLog appends dispatch events. Records are never updated.
type AuditLog interface {
	Append(ctx context.Context, events ...audit.Event) error
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error)
}
