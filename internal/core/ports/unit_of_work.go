package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Repositories obtained after Begin share its transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	CourierRepository() CourierRepository
	OrderRepository() OrderRepository
	OfferRepository() OfferRepository
	BatchRepository() BatchRepository
	AuditLog() AuditLog
}
