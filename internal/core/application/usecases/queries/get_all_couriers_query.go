// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return read models assembled straight from the database.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetAllCouriersQueryIsNotConstructed = errors.New(
		"GetAllCouriersQuery must be created via NewGetAllCouriersQuery constructor",
	)
)

// GetAllCouriersQuery lists every courier with the state the dispatcher ranks on.
//
// Example:
//
//	query := NewGetAllCouriersQuery()
//	handler := NewGetAllCouriersQueryHandler(db)
//
//	couriers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve couriers: %w", err)
//	}
type GetAllCouriersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetAllCouriersQuery() GetAllCouriersQuery {
	return GetAllCouriersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAllCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetAllCouriersQueryIsNotConstructed)
}

// GetAllCouriersQueryResponse is one courier row. Location is nil until the
// courier reports a position; WorkUnitID is nil while the courier is free.
type GetAllCouriersQueryResponse struct {
	ID              kernel.UUID
	Name            string
	Online          bool
	Location        *kernel.Location
	PriorityScore   float64
	RejectionsToday int
	WorkUnitKind    string
	WorkUnitID      *kernel.UUID
}
