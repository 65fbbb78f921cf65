package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"

	"github.com/stretchr/testify/suite"
)

type GetCourierOffersQueryHandlerTestSuite struct {
	readSuite
	handler queries.GetCourierOffersQueryHandler
}

func (suite *GetCourierOffersQueryHandlerTestSuite) SetupSuite() {
	suite.readSuite.SetupSuite()
	suite.handler = queries.NewGetCourierOffersQueryHandler(suite.DB, clock)
}

func (suite *GetCourierOffersQueryHandlerTestSuite) TestHandle_ReturnsOnlyActiveOffers() {
	ctx := context.Background()
	here := suite.location(52.52, 13.40)
	x := suite.addCourier("X", &here)
	y := suite.addCourier("Y", &here)

	stale := suite.addOrder(0, 900, now.Add(-time.Hour))
	fresh := suite.addOrder(1, 1500, now.Add(-time.Minute))
	foreign := suite.addOrder(2, 700, now.Add(-time.Minute))
	suite.addOffer(stale, x.ID(), 1, now.Add(-2*time.Minute))
	active := suite.addOffer(fresh, x.ID(), 1, now.Add(-20*time.Second))
	suite.addOffer(foreign, y.ID(), 1, now.Add(-20*time.Second))

	query, err := queries.NewGetCourierOffersQuery(x.ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(active.ID(), result[0].OfferID)
	suite.Equal(fresh.ID(), result[0].OrderID)
	suite.Equal(int64(1500), result[0].Price)
	suite.Equal(active.ExpiresAt(), result[0].ExpiresAt.UTC())
	suite.True(fresh.Pickup().Location().IsEqual(result[0].Pickup))
	suite.Equal("dropoff", result[0].DropoffLine)
}

func (suite *GetCourierOffersQueryHandlerTestSuite) TestHandle_UnknownCourier_ReturnsEmptySlice() {
	query, err := queries.NewGetCourierOffersQuery(suite.addCourier("idle", nil).ID())
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func TestGetCourierOffersQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetCourierOffersQueryHandlerTestSuite))
}
