package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetCourierOffersQueryIsNotConstructed = errors.New(
		"GetCourierOffersQuery must be created via NewGetCourierOffersQuery constructor",
	)
)

// GetCourierOffersQuery is a courier's inbox: offers that can still be answered.
type GetCourierOffersQuery struct {
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetCourierOffersQuery(courierID kernel.UUID) (GetCourierOffersQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetCourierOffersQuery{}, err
	}
	return GetCourierOffersQuery{
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetCourierOffersQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierOffersQueryIsNotConstructed)
}

func (q GetCourierOffersQuery) CourierID() kernel.UUID {
	return q.courierID
}

type GetCourierOffersQueryResponse struct {
	OfferID            kernel.UUID
	OrderID            kernel.UUID
	Attempt            int
	DistanceToPickupKm float64
	OfferedAt          time.Time
	ExpiresAt          time.Time
	Pickup             kernel.Location
	PickupLine         string
	Dropoff            kernel.Location
	DropoffLine        string
	Price              int64
}
