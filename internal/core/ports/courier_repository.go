// Package ports defines the contracts between the dispatch core and its
// infrastructure: repositories, the unit of work, notification delivery,
// the policy source and the clock.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	Add(ctx context.Context, courier *courier.Courier) error

	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// ListAvailable returns couriers that are online, have a known location
	// and no active work unit. Like OrderRepository.ListAwaitingDistribution it
	// reports unreadable rows with errs.SkippedRecordsError and returns the rest.
	ListAvailable(ctx context.Context) ([]*courier.Courier, error)

	// UpdatePresence stores the online flag and, when location is not nil, the position.
	UpdatePresence(ctx context.Context, id kernel.UUID, online bool, location *kernel.Location) error

	// UpdateLocation stores the position and leaves the online flag as it is.
	UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location) error

	// AddPenalty increments priority score and rejection counter in place so that
	// concurrent penalties never overwrite each other.
	AddPenalty(ctx context.Context, id kernel.UUID, penalty courier.Penalty) error

	// Occupy sets the work unit only if the courier has none; false means it was already busy.
	Occupy(ctx context.Context, id kernel.UUID, unit courier.WorkUnit) (bool, error)
}
