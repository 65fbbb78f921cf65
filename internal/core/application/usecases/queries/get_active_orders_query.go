package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
		"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
	)
)

// GetActiveOrdersQuery lists orders that are still in play: Pending ones waiting for
// a courier and Accepted ones on their way.
type GetActiveOrdersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetActiveOrdersQuery() GetActiveOrdersQuery {
	return GetActiveOrdersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

// GetActiveOrdersQueryResponse is one order with its current dispatch progress.
type GetActiveOrdersQueryResponse struct {
	ID            kernel.UUID
	CustomerID    kernel.UUID
	Pickup        kernel.Location
	PickupLine    string
	Dropoff       kernel.Location
	DropoffLine   string
	Price         int64
	Status        string
	CourierID     *kernel.UUID
	BatchID       *kernel.UUID
	BatchSequence int
	// ActiveOffers counts offers still open at query time.
	ActiveOffers int
	// Attempts is the highest attempt number made so far.
	Attempts  int
	CreatedAt time.Time
}
