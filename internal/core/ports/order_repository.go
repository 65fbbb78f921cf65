package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// State changes are conditional writes: they report false instead of failing
// when the row is no longer in the expected state.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ObjectNotFoundError when the id is unknown.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)

	// ListAwaitingDistribution returns Pending, unassigned orders without an
	// offer that is Pending with expiresAt after now, oldest first. Stored rows
	// that cannot be restored are reported with errs.SkippedRecordsError next to
	// the orders that could be.
	ListAwaitingDistribution(ctx context.Context, now time.Time) ([]*order.Order, error)

	// Claim moves a Pending unassigned order to Accepted for courierID.
	Claim(ctx context.Context, orderID, courierID kernel.UUID) (bool, error)

	// ClaimForBatch is Claim that also records the batch id and visiting sequence.
	ClaimForBatch(ctx context.Context, orderID, courierID, batchID kernel.UUID, sequence int) (bool, error)

	// TransitionStatus moves an unassigned order from one status to another.
	TransitionStatus(ctx context.Context, orderID kernel.UUID, from, to order.Status) (bool, error)
}
