package lifecycle_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/lifecycle"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/policy"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/core/ports/portsmock"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type uowFactory struct{ uow *portsmock.UnitOfWork }

func (f uowFactory) Create() lifecycle.UoW { return f.uow }

type fixture struct {
	uow      *portsmock.UnitOfWork
	notifier *portsmock.NotificationGateway
	policies *portsmock.StaticPolicy
	manager  *lifecycle.Manager
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pol := policy.Default()
	pol.RejectionPenaltyPoints = 10

	f := &fixture{
		uow:      portsmock.NewUnitOfWork(),
		notifier: new(portsmock.NotificationGateway),
		policies: portsmock.NewStaticPolicy(pol),
		clock:    now,
	}
	f.manager = lifecycle.NewManager(
		uowFactory{uow: f.uow},
		f.notifier,
		f.policies,
		ports.ClockFunc(func() time.Time { return f.clock }),
		ports.NopMetrics{},
		slog.New(slog.DiscardHandler),
	)
	return f
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	loc, err := kernel.NewLocation(52.52, 13.40)
	require.NoError(t, err)
	pickup, err := order.NewAddress(loc, "Alexanderplatz 1")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, pickup, 900, now.Add(-time.Hour))
	require.NoError(t, err)
	return o
}

func newCourier(t *testing.T) *courier.Courier {
	t.Helper()
	loc, err := kernel.NewLocation(52.53, 13.40)
	require.NoError(t, err)
	c, err := courier.RestoreCourier(kernel.NewUUID(), "Kim", true, &loc, 0, 0, nil)
	require.NoError(t, err)
	return c
}

func newPendingOffer(t *testing.T, orderID, courierID kernel.UUID, offeredAt time.Time) *offer.Offer {
	t.Helper()
	o, err := offer.NewOffer(kernel.NewUUID(), orderID, courierID, 1.1, 1, offeredAt, time.Minute)
	require.NoError(t, err)
	return o
}

func TestManager_CreateOffer(t *testing.T) {
	ctx := t.Context()

	t.Run("creates offer, audits and notifies the courier", func(t *testing.T) {
		f := newFixture(t)
		o := newOrder(t)
		c := newCourier(t)

		f.uow.ExpectTx(ctx, true)
		f.uow.Offers.On("AddIfCourierFree", ctx, mock.AnythingOfType("*offer.Offer"), now).Return(nil).Once()
		f.uow.Audit.On("Append", ctx, mock.Anything).Return(nil).Once()
		f.notifier.On("Send", ctx, c.ID(), mock.MatchedBy(func(m ports.Message) bool {
			return m.Data["type"] == "offer_created" && m.Data["attempt"] == "2"
		})).Return(nil).Once()

		created, err := f.manager.CreateOffer(ctx, o, services.Candidate{Courier: c, DistanceKm: 1.1}, 2, time.Minute, now)

		require.NoError(t, err)
		assert.Equal(t, offer.Pending, created.Status())
		assert.Equal(t, now.Add(time.Minute), created.ExpiresAt())
		assert.Equal(t, 2, created.Attempt())
		f.uow.AssertAll(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("conflict when the courier already holds an active offer", func(t *testing.T) {
		f := newFixture(t)
		c := newCourier(t)

		f.uow.ExpectTx(ctx, false)
		f.uow.Offers.On("AddIfCourierFree", ctx, mock.Anything, now).
			Return(errs.NewConflictError("courier", c.ID(), "holds an active offer")).Once()

		created, err := f.manager.CreateOffer(ctx, newOrder(t), services.Candidate{Courier: c, DistanceKm: 1}, 1, time.Minute, now)

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Nil(t, created)
		f.uow.AssertNotCalled(t, "Commit", ctx)
		f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestManager_ExpireStaleOffers(t *testing.T) {
	ctx := t.Context()

	t.Run("expires, penalizes by half the points and skips offers resolved concurrently", func(t *testing.T) {
		f := newFixture(t)
		first := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now.Add(-2*time.Minute))
		raced := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now.Add(-2*time.Minute))

		f.uow.Offers.On("ListStale", ctx, now).Return([]*offer.Offer{first, raced}, nil).Once()
		f.uow.On("Begin", ctx).Return(nil).Twice()
		f.uow.On("Rollback", ctx).Return(nil).Maybe()
		f.uow.On("Commit", ctx).Return(nil).Once()
		f.uow.Offers.On("Resolve", ctx, first).Return(true, nil).Once()
		f.uow.Offers.On("Resolve", ctx, raced).Return(false, nil).Once()
		f.uow.Couriers.On("AddPenalty", ctx, first.CourierID(), courier.Penalty{Points: 5, Rejections: 1}).Return(nil).Once()
		f.uow.Audit.On("Append", ctx, mock.Anything).Return(nil).Once()

		expired, err := f.manager.ExpireStaleOffers(ctx, now)

		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.Equal(t, offer.Expired, first.Status())
		assert.Equal(t, offer.ReasonTimeout, first.FailureReason())
		assert.Equal(t, now, *first.RespondedAt())
		f.uow.AssertAll(t)
	})

	t.Run("nothing stale means no writes", func(t *testing.T) {
		f := newFixture(t)
		f.uow.Offers.On("ListStale", ctx, now).Return([]*offer.Offer{}, nil).Once()

		expired, err := f.manager.ExpireStaleOffers(ctx, now)

		require.NoError(t, err)
		assert.Zero(t, expired)
		f.uow.AssertNotCalled(t, "Begin", ctx)
	})

	t.Run("one failing offer does not stop the others", func(t *testing.T) {
		f := newFixture(t)
		broken := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now.Add(-2*time.Minute))
		healthy := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now.Add(-2*time.Minute))

		f.uow.Offers.On("ListStale", ctx, now).Return([]*offer.Offer{broken, healthy}, nil).Once()
		f.uow.On("Begin", ctx).Return(nil).Twice()
		f.uow.On("Rollback", ctx).Return(nil).Maybe()
		f.uow.On("Commit", ctx).Return(nil).Once()
		f.uow.Offers.On("Resolve", ctx, broken).Return(false, errors.New("connection reset")).Once()
		f.uow.Offers.On("Resolve", ctx, healthy).Return(true, nil).Once()
		f.uow.Couriers.On("AddPenalty", ctx, healthy.CourierID(), mock.Anything).Return(nil).Once()
		f.uow.Audit.On("Append", ctx, mock.Anything).Return(nil).Once()

		expired, err := f.manager.ExpireStaleOffers(ctx, now)

		require.EqualError(t, err, "connection reset")
		assert.Equal(t, 1, expired)
	})
}

func TestManager_Respond_Accept(t *testing.T) {
	ctx := t.Context()

	t.Run("claims the order, occupies the courier and supersedes siblings", func(t *testing.T) {
		f := newFixture(t)
		o := newOrder(t)
		winner := newPendingOffer(t, o.ID(), kernel.NewUUID(), now.Add(-10*time.Second))
		sibling1 := newPendingOffer(t, o.ID(), kernel.NewUUID(), now.Add(-10*time.Second))
		sibling2 := newPendingOffer(t, o.ID(), kernel.NewUUID(), now.Add(-10*time.Second))
		require.NoError(t, sibling1.Reject(now, offer.ReasonSuperseded))
		require.NoError(t, sibling2.Reject(now, offer.ReasonSuperseded))
		claimed, err := order.RestoreOrder(o.ID(), o.CustomerID(), o.Pickup(), o.Dropoff(), o.Price(),
			order.Accepted, ptr(winner.CourierID()), nil, 0, o.CreatedAt())
		require.NoError(t, err)
		unit, err := courier.NewOrderWorkUnit(o.ID())
		require.NoError(t, err)

		f.uow.ExpectTx(ctx, true)
		f.uow.Offers.On("Get", ctx, winner.ID()).Return(winner, nil).Once()
		f.uow.Orders.On("Claim", ctx, o.ID(), winner.CourierID()).Return(true, nil).Once()
		f.uow.Offers.On("Resolve", ctx, winner).Return(true, nil).Once()
		f.uow.Couriers.On("Occupy", ctx, winner.CourierID(), unit).Return(true, nil).Once()
		f.uow.Offers.On("ResolvePendingForOrder", ctx, o.ID(), ptr(winner.ID()), offer.ReasonSuperseded, now).
			Return([]*offer.Offer{sibling1, sibling2}, nil).Once()
		f.uow.Audit.On("Append", ctx, mock.MatchedBy(func(events []audit.Event) bool {
			return len(events) == 3 &&
				events[0].Kind == audit.KindOfferAccepted &&
				events[1].Kind == audit.KindOffersSuperseded
		})).Return(nil).Once()
		f.uow.Orders.On("Get", ctx, o.ID()).Return(claimed, nil).Once()
		f.notifier.On("Send", ctx, o.CustomerID(), mock.Anything).Return(nil).Once()
		f.notifier.On("Send", ctx, sibling1.CourierID(), mock.Anything).Return(errors.New("fcm unavailable")).Once()
		f.notifier.On("Send", ctx, sibling2.CourierID(), mock.Anything).Return(nil).Once()

		result, err := f.manager.Respond(ctx, winner.ID(), winner.CourierID(), true, nil)

		require.NoError(t, err, "notification failures are swallowed")
		assert.Equal(t, lifecycle.OutcomeAccepted, result.Outcome)
		assert.Equal(t, 2, result.Superseded)
		assert.Equal(t, offer.Accepted, winner.Status())
		f.uow.AssertAll(t)
		f.notifier.AssertExpectations(t)
		f.uow.Couriers.AssertNotCalled(t, "AddPenalty", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race rejects the offer without penalty", func(t *testing.T) {
		f := newFixture(t)
		o := newOrder(t)
		late := newPendingOffer(t, o.ID(), kernel.NewUUID(), now.Add(-10*time.Second))

		f.uow.ExpectTx(ctx, true)
		f.uow.Offers.On("Get", ctx, late.ID()).Return(late, nil).Once()
		f.uow.Orders.On("Claim", ctx, o.ID(), late.CourierID()).Return(false, nil).Once()
		f.uow.Offers.On("Resolve", ctx, late).Return(true, nil).Once()
		f.uow.Audit.On("Append", ctx, mock.Anything).Return(nil).Once()

		result, err := f.manager.Respond(ctx, late.ID(), late.CourierID(), true, nil)

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, lifecycle.OutcomeLostRace, result.Outcome)
		assert.Equal(t, offer.Rejected, late.Status())
		assert.Equal(t, offer.ReasonLostRace, late.FailureReason())
		f.uow.Couriers.AssertNotCalled(t, "AddPenalty", mock.Anything, mock.Anything, mock.Anything)
		f.uow.Couriers.AssertNotCalled(t, "Occupy", mock.Anything, mock.Anything, mock.Anything)
		f.uow.AssertAll(t)
	})

	t.Run("response after the deadline loses to expiry", func(t *testing.T) {
		f := newFixture(t)
		o := newOrder(t)
		stale := newPendingOffer(t, o.ID(), kernel.NewUUID(), now.Add(-time.Minute))

		f.uow.ExpectTx(ctx, true)
		f.uow.Offers.On("Get", ctx, stale.ID()).Return(stale, nil).Once()
		f.uow.Offers.On("Resolve", ctx, stale).Return(true, nil).Once()
		f.uow.Couriers.On("AddPenalty", ctx, stale.CourierID(), courier.Penalty{Points: 5, Rejections: 1}).Return(nil).Once()
		f.uow.Audit.On("Append", ctx, mock.Anything).Return(nil).Once()

		_, err := f.manager.Respond(ctx, stale.ID(), stale.CourierID(), true, nil)

		require.ErrorIs(t, err, offer.ErrOfferNotActive)
		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, offer.Expired, stale.Status())
		f.uow.Orders.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
		f.uow.AssertAll(t)
	})

	t.Run("already resolved offer is a conflict", func(t *testing.T) {
		f := newFixture(t)
		resolved := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now.Add(-10*time.Second))
		require.NoError(t, resolved.Reject(now, offer.ReasonExplicitReject))

		f.uow.ExpectTx(ctx, false)
		f.uow.Offers.On("Get", ctx, resolved.ID()).Return(resolved, nil).Once()

		_, err := f.manager.Respond(ctx, resolved.ID(), resolved.CourierID(), true, nil)

		require.ErrorIs(t, err, offer.ErrOfferNotActive)
	})

	t.Run("offer of another courier is not found", func(t *testing.T) {
		f := newFixture(t)
		o := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now)
		loc, err := kernel.NewLocation(52.5, 13.4)
		require.NoError(t, err)

		f.uow.ExpectTx(ctx, false)
		f.uow.Offers.On("Get", ctx, o.ID()).Return(o, nil).Once()

		_, err = f.manager.Respond(ctx, o.ID(), kernel.NewUUID(), true, &loc)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		f.uow.Couriers.AssertNotCalled(t, "UpdateLocation", mock.Anything, mock.Anything, mock.Anything)
		f.uow.Couriers.AssertNotCalled(t, "UpdatePresence", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown offer leaves the position alone", func(t *testing.T) {
		f := newFixture(t)
		offerID := kernel.NewUUID()
		loc, err := kernel.NewLocation(52.5, 13.4)
		require.NoError(t, err)

		f.uow.ExpectTx(ctx, false)
		f.uow.Offers.On("Get", ctx, offerID).Return(nil, errs.NewObjectNotFoundError("offer", offerID.String())).Once()

		_, err = f.manager.Respond(ctx, offerID, kernel.NewUUID(), false, &loc)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		f.uow.Couriers.AssertNotCalled(t, "UpdateLocation", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failing to record the expiry is not a conflict", func(t *testing.T) {
		f := newFixture(t)
		stale := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now.Add(-time.Minute))

		f.uow.On("Begin", ctx).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(errors.New("connection reset")).Once()
		f.uow.On("Rollback", ctx).Return(nil).Maybe()
		f.uow.Offers.On("Get", ctx, stale.ID()).Return(stale, nil).Once()
		f.uow.Offers.On("Resolve", ctx, stale).Return(true, nil).Once()
		f.uow.Couriers.On("AddPenalty", ctx, stale.CourierID(), courier.Penalty{Points: 5, Rejections: 1}).Return(nil).Once()
		f.uow.Audit.On("Append", ctx, mock.Anything).Return(nil).Once()

		_, err := f.manager.Respond(ctx, stale.ID(), stale.CourierID(), true, nil)

		require.Error(t, err)
		assert.NotErrorIs(t, err, errs.ErrConflict)
		assert.NotErrorIs(t, err, offer.ErrOfferNotActive)
		f.uow.AssertAll(t)
	})
}

func TestManager_Respond_Reject(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	o := newPendingOffer(t, kernel.NewUUID(), kernel.NewUUID(), now.Add(-5*time.Second))
	loc, err := kernel.NewLocation(52.5, 13.4)
	require.NoError(t, err)

	f.uow.Couriers.On("UpdateLocation", ctx, o.CourierID(), loc).Return(nil).Once()
	f.uow.ExpectTx(ctx, true)
	f.uow.Offers.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.uow.Offers.On("Resolve", ctx, o).Return(true, nil).Once()
	f.uow.Couriers.On("AddPenalty", ctx, o.CourierID(), courier.Penalty{Points: 10, Rejections: 1}).Return(nil).Once()
	f.uow.Audit.On("Append", ctx, mock.Anything).Return(nil).Once()

	result, err := f.manager.Respond(ctx, o.ID(), o.CourierID(), false, &loc)

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeRejected, result.Outcome)
	assert.Equal(t, offer.ReasonExplicitReject, o.FailureReason())
	f.uow.AssertAll(t)
}

func ptr[T any](v T) *T {
	return &v
}
