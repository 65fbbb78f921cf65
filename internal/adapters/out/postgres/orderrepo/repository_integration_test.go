package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/offerrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite verifies order persistence and the
// conditional transitions against a real PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	pgtest.Suite
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	suite.Models = postgres.Models()
	suite.Suite.SetupSuite()
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Suite.SetupTest()

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = orderrepo.NewGormOrderRepository(suite.DB, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(createdAt time.Time) *order.Order {
	pickupLoc, err := kernel.NewLocation(52.520008, 13.404954)
	suite.Require().NoError(err)
	dropoffLoc, err := kernel.NewLocation(52.5373, 13.3603)
	suite.Require().NoError(err)
	pickup, err := order.NewAddress(pickupLoc, "Alexanderplatz 1")
	suite.Require().NoError(err)
	dropoff, err := order.NewAddress(dropoffLoc, "Seestrasse 40")
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, dropoff, 1490, createdAt)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), o))
	return o
}

// freeCourier stores an online courier without work, one that can receive offers.
func (suite *OrderRepositoryIntegrationTestSuite) freeCourier() kernel.UUID {
	loc, err := kernel.NewLocation(52.52, 13.40)
	suite.Require().NoError(err)
	c, err := courier.RestoreCourier(kernel.NewUUID(), "Kim", true, &loc, 0, 0, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(courierrepo.NewGormCourierRepository(suite.DB, suite.tracker).Add(context.Background(), c))
	return c.ID()
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	original := suite.newOrder(now)

	restored, err := suite.repository.Get(ctx, original.ID())

	suite.Require().NoError(err)
	suite.True(original.ID().IsEqual(restored.ID()))
	suite.True(original.CustomerID().IsEqual(restored.CustomerID()))
	suite.True(original.Pickup().Location().IsEqual(restored.Pickup().Location()))
	suite.Equal("Seestrasse 40", restored.Dropoff().Line())
	suite.Equal(int64(1490), restored.Price())
	suite.Equal(order.Pending, restored.Status())
	suite.Nil(restored.Courier())
	suite.True(now.Equal(restored.CreatedAt()))
	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", original.ID(), original)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetMany_ReturnsOnlyExisting() {
	ctx := context.Background()
	a := suite.newOrder(now)
	b := suite.newOrder(now)

	found, err := suite.repository.GetMany(ctx, []kernel.UUID{a.ID(), b.ID(), kernel.NewUUID()})

	suite.Require().NoError(err)
	suite.Len(found, 2)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestClaim_OnlyOnce() {
	ctx := context.Background()
	o := suite.newOrder(now)
	first, second := kernel.NewUUID(), kernel.NewUUID()

	won, err := suite.repository.Claim(ctx, o.ID(), first)
	suite.Require().NoError(err)
	suite.True(won)

	won, err = suite.repository.Claim(ctx, o.ID(), second)
	suite.Require().NoError(err)
	suite.False(won)

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Accepted, stored.Status())
	suite.Require().NotNil(stored.Courier())
	suite.True(first.IsEqual(*stored.Courier()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestClaimForBatch_RecordsSequence() {
	ctx := context.Background()
	o := suite.newOrder(now)
	courierID, batchID := kernel.NewUUID(), kernel.NewUUID()

	won, err := suite.repository.ClaimForBatch(ctx, o.ID(), courierID, batchID, 2)
	suite.Require().NoError(err)
	suite.True(won)

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	storedBatch, seq := stored.Batch()
	suite.Require().NotNil(storedBatch)
	suite.True(batchID.IsEqual(*storedBatch))
	suite.Equal(2, seq)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestTransitionStatus_IsConditional() {
	ctx := context.Background()
	o := suite.newOrder(now)

	moved, err := suite.repository.TransitionStatus(ctx, o.ID(), order.Pending, order.NoCourierAvailable)
	suite.Require().NoError(err)
	suite.True(moved)

	moved, err = suite.repository.TransitionStatus(ctx, o.ID(), order.Pending, order.NoCourierAvailable)
	suite.Require().NoError(err)
	suite.False(moved)

	claimed := suite.newOrder(now)
	_, err = suite.repository.Claim(ctx, claimed.ID(), kernel.NewUUID())
	suite.Require().NoError(err)
	moved, err = suite.repository.TransitionStatus(ctx, claimed.ID(), order.Pending, order.Cancelled)
	suite.Require().NoError(err)
	suite.False(moved)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListAwaitingDistribution() {
	ctx := context.Background()
	older := suite.newOrder(now.Add(-2 * time.Minute))
	newer := suite.newOrder(now.Add(-time.Minute))
	withActiveOffer := suite.newOrder(now.Add(-3 * time.Minute))
	withStaleOffer := suite.newOrder(now.Add(-4 * time.Minute))
	claimed := suite.newOrder(now.Add(-5 * time.Minute))
	_, err := suite.repository.Claim(ctx, claimed.ID(), kernel.NewUUID())
	suite.Require().NoError(err)

	active, err := offer.NewOffer(kernel.NewUUID(), withActiveOffer.ID(), suite.freeCourier(), 1, 1, now.Add(-10*time.Second), time.Minute)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.DB.Transaction(func(tx *gorm.DB) error {
		return offerrepo.NewGormOfferRepository(tx, suite.tracker).AddIfCourierFree(ctx, active, now)
	}))
	// expires exactly now, so it no longer blocks the order
	stale, err := offer.NewOffer(kernel.NewUUID(), withStaleOffer.ID(), suite.freeCourier(), 1, 1, now.Add(-time.Minute), time.Minute)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.DB.Transaction(func(tx *gorm.DB) error {
		return offerrepo.NewGormOfferRepository(tx, suite.tracker).AddIfCourierFree(ctx, stale, now.Add(-time.Minute))
	}))

	awaiting, err := suite.repository.ListAwaitingDistribution(ctx, now)

	suite.Require().NoError(err)
	suite.Require().Len(awaiting, 3)
	suite.True(withStaleOffer.ID().IsEqual(awaiting[0].ID()))
	suite.True(older.ID().IsEqual(awaiting[1].ID()))
	suite.True(newer.ID().IsEqual(awaiting[2].ID()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListAwaitingDistribution_SkipsUnreadableRows() {
	ctx := context.Background()
	readable := suite.newOrder(now.Add(-time.Minute))
	corrupt := orderrepo.OrderDTO{
		ID:         kernel.NewUUID().Bytes(),
		CustomerID: kernel.NewUUID().Bytes(),
		Pickup:     orderrepo.AddressDTO{Lat: 95, Lon: 13.4, Line: "out of range"},
		Dropoff:    orderrepo.AddressDTO{Lat: 52.5, Lon: 13.4, Line: "Seestrasse 40"},
		Price:      900,
		Status:     int(order.Pending),
		CreatedAt:  now.Add(-2 * time.Minute),
	}
	suite.Require().NoError(suite.DB.Create(&corrupt).Error)

	awaiting, err := suite.repository.ListAwaitingDistribution(ctx, now)

	suite.Require().ErrorIs(err, errs.ErrRecordsSkipped)
	var skipped *errs.SkippedRecordsError
	suite.Require().ErrorAs(err, &skipped)
	suite.Equal([]string{corrupt.ID.String()}, skipped.IDs)
	suite.Require().Len(awaiting, 1)
	suite.True(readable.ID().IsEqual(awaiting[0].ID()))
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
