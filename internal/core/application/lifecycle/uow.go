package lifecycle

import (
	"context"

	"dispatch/internal/core/ports"
)

type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// UoW is the slice of the unit of work the offer lifecycle touches.
	UoW interface {
		TxManager
		OrderRepository() ports.OrderRepository
		CourierRepository() ports.CourierRepository
		OfferRepository() ports.OfferRepository
		AuditLog() ports.AuditLog
	}

	UoWFactory interface {
		Create() UoW
	}
)
