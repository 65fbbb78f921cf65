package queries_test

import (
	"context"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

const kmPerDeg = 111.195

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var clock = ports.ClockFunc(func() time.Time { return now })

// readSuite seeds rows through the repositories and reads them back through a query.
type readSuite struct {
	pgtest.Suite
	factory *postgres_adapter.GormUnitOfWorkFactory
}

func (s *readSuite) SetupSuite() {
	s.Models = postgres_adapter.Models()
	s.Suite.SetupSuite()
	s.factory = postgres_adapter.NewGormUnitOfWorkFactory(s.DB)
}

func (s *readSuite) location(lat, lon float64) kernel.Location {
	loc, err := kernel.NewLocation(lat, lon)
	s.Require().NoError(err)
	return loc
}

// addOrder stores a Pending order whose pickup lies kmNorth of (52.52, 13.40).
func (s *readSuite) addOrder(kmNorth float64, price int64, createdAt time.Time) *order.Order {
	pickup, err := order.NewAddress(s.location(52.52+kmNorth/kmPerDeg, 13.40), "pickup")
	s.Require().NoError(err)
	dropoff, err := order.NewAddress(s.location(52.52+kmNorth/kmPerDeg, 13.43), "dropoff")
	s.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, dropoff, price, createdAt)
	s.Require().NoError(err)
	s.Require().NoError(s.factory.Create().OrderRepository().Add(context.Background(), o))
	return o
}

func (s *readSuite) addCourier(name string, loc *kernel.Location) *courier.Courier {
	c, err := courier.RestoreCourier(kernel.NewUUID(), name, loc != nil, loc, 0, 0, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.factory.Create().CourierRepository().Add(context.Background(), c))
	return c
}

func (s *readSuite) addOffer(o *order.Order, courierID kernel.UUID, attempt int, offeredAt time.Time) *offer.Offer {
	ctx := context.Background()
	of, err := offer.NewOffer(kernel.NewUUID(), o.ID(), courierID, 1.2, attempt, offeredAt, time.Minute)
	s.Require().NoError(err)

	uow := s.factory.Create()
	s.Require().NoError(uow.Begin(ctx))
	s.Require().NoError(uow.OfferRepository().AddIfCourierFree(ctx, of, offeredAt))
	s.Require().NoError(uow.Commit(ctx))
	return of
}
