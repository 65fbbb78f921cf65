// Package portsmock provides testify mocks of the ports for handler tests.
package portsmock

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
)

type OrderRepository struct{ mock.Mock }

func (m *OrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *OrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *OrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *OrderRepository) ListAwaitingDistribution(ctx context.Context, now time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *OrderRepository) Claim(ctx context.Context, orderID, courierID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID, courierID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) ClaimForBatch(
	ctx context.Context,
	orderID, courierID, batchID kernel.UUID,
	sequence int,
) (bool, error) {
	args := m.Called(ctx, orderID, courierID, batchID, sequence)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) TransitionStatus(ctx context.Context, orderID kernel.UUID, from, to order.Status) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

type CourierRepository struct{ mock.Mock }

func (m *CourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *CourierRepository) ListAvailable(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

func (m *CourierRepository) UpdatePresence(ctx context.Context, id kernel.UUID, online bool, location *kernel.Location) error {
	args := m.Called(ctx, id, online, location)
	return args.Error(0)
}

func (m *CourierRepository) UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location) error {
	args := m.Called(ctx, id, location)
	return args.Error(0)
}

func (m *CourierRepository) AddPenalty(ctx context.Context, id kernel.UUID, penalty courier.Penalty) error {
	args := m.Called(ctx, id, penalty)
	return args.Error(0)
}

func (m *CourierRepository) Occupy(ctx context.Context, id kernel.UUID, unit courier.WorkUnit) (bool, error) {
	args := m.Called(ctx, id, unit)
	return args.Bool(0), args.Error(1)
}

type OfferRepository struct{ mock.Mock }

func (m *OfferRepository) AddIfCourierFree(ctx context.Context, o *offer.Offer, now time.Time) error {
	args := m.Called(ctx, o, now)
	return args.Error(0)
}

func (m *OfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *OfferRepository) Resolve(ctx context.Context, o *offer.Offer) (bool, error) {
	args := m.Called(ctx, o)
	return args.Bool(0), args.Error(1)
}

func (m *OfferRepository) ResolvePendingForOrder(
	ctx context.Context,
	orderID kernel.UUID,
	except *kernel.UUID,
	reason offer.FailureReason,
	now time.Time,
) ([]*offer.Offer, error) {
	args := m.Called(ctx, orderID, except, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *OfferRepository) ResolvePendingForCourier(
	ctx context.Context,
	courierID kernel.UUID,
	reason offer.FailureReason,
	now time.Time,
) ([]*offer.Offer, error) {
	args := m.Called(ctx, courierID, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *OfferRepository) ListStale(ctx context.Context, now time.Time) ([]*offer.Offer, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *OfferRepository) LastAttempt(ctx context.Context, orderID kernel.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *OfferRepository) CourierIDsWithActiveOffers(ctx context.Context, now time.Time) ([]kernel.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *OfferRepository) CourierIDsRefusedOrder(ctx context.Context, orderID kernel.UUID) ([]kernel.UUID, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *OfferRepository) ListActiveByCourier(ctx context.Context, courierID kernel.UUID, now time.Time) ([]*offer.Offer, error) {
	args := m.Called(ctx, courierID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *OfferRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*offer.Offer, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

type BatchRepository struct{ mock.Mock }

func (m *BatchRepository) Add(ctx context.Context, b *batch.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Batch), args.Error(1)
}

type AuditLog struct{ mock.Mock }

func (m *AuditLog) Append(ctx context.Context, events ...audit.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *AuditLog) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Event), args.Error(1)
}
