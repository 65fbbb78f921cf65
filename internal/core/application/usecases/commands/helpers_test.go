package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports/portsmock"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type dispatchFactory struct{ uow *portsmock.UnitOfWork }

func (f dispatchFactory) Create() commands.DispatchUoW { return f.uow }

type orderFactory struct{ uow *portsmock.UnitOfWork }

func (f orderFactory) Create() commands.OrderUoW { return f.uow }

type courierFactory struct{ uow *portsmock.UnitOfWork }

func (f courierFactory) Create() commands.CourierUoW { return f.uow }

// lifecycleMock stands in for the offer lifecycle manager.
type lifecycleMock struct{ mock.Mock }

func (m *lifecycleMock) ExpireStaleOffers(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *lifecycleMock) CreateOffer(
	ctx context.Context,
	o *order.Order,
	candidate services.Candidate,
	attempt int,
	timeout time.Duration,
	now time.Time,
) (*offer.Offer, error) {
	args := m.Called(ctx, o, candidate.Courier.ID(), attempt, timeout, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

// kmNorth converts a northward distance to degrees of latitude.
func kmNorth(km float64) float64 {
	return km / 111.195
}

func location(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func newOrderAt(t *testing.T, lat, lon float64, createdAt time.Time) *order.Order {
	t.Helper()
	pickup, err := order.NewAddress(location(t, lat, lon), "Pickup street 1")
	require.NoError(t, err)
	dropoff, err := order.NewAddress(location(t, lat+kmNorth(2), lon), "Dropoff street 9")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, dropoff, 1200, createdAt)
	require.NoError(t, err)
	return o
}

func newCourierAt(t *testing.T, name string, lat, lon, score float64) *courier.Courier {
	t.Helper()
	loc := location(t, lat, lon)
	c, err := courier.RestoreCourier(kernel.NewUUID(), name, true, &loc, score, 0, nil)
	require.NoError(t, err)
	return c
}

func createdOffer(t *testing.T, o *order.Order, c *courier.Courier, attempt int) *offer.Offer {
	t.Helper()
	of, err := offer.NewOffer(kernel.NewUUID(), o.ID(), c.ID(), 1, attempt, now, time.Minute)
	require.NoError(t, err)
	return of
}

func ptr[T any](v T) *T {
	return &v
}
