// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	OfferRepoFactory interface {
		OfferRepository() ports.OfferRepository
	}

	BatchRepoFactory interface {
		BatchRepository() ports.BatchRepository
	}

	AuditLogFactory interface {
		AuditLog() ports.AuditLog
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CourierUoW manages transactions for courier-only operations.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// DispatchUoW spans orders, couriers, offers, batches and the audit log.
	// Used by the sweep, cancellation and batch confirmation.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   ok, err := uow.OrderRepository().TransitionStatus(ctx, id, order.Pending, order.Cancelled)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	DispatchUoW interface {
		TxManager
		OrderRepoFactory
		CourierRepoFactory
		OfferRepoFactory
		BatchRepoFactory
		AuditLogFactory
	}

	DispatchUoWFactory interface {
		Create() DispatchUoW
	}
)
