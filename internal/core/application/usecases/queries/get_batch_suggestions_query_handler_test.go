package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/policy"
	"dispatch/internal/core/ports/portsmock"

	"github.com/stretchr/testify/suite"
)

type GetBatchSuggestionsQueryHandlerTestSuite struct {
	readSuite
	handler queries.GetBatchSuggestionsQueryHandler
}

func (suite *GetBatchSuggestionsQueryHandlerTestSuite) SetupSuite() {
	suite.readSuite.SetupSuite()
	suite.handler = queries.NewGetBatchSuggestionsQueryHandler(suite.DB, portsmock.NewStaticPolicy(policy.Default()), clock)
}

func (suite *GetBatchSuggestionsQueryHandlerTestSuite) TestHandle_ClustersNearbyOrdersOnly() {
	first := suite.addOrder(0, 1000, now.Add(-4*time.Minute))
	second := suite.addOrder(1, 1100, now.Add(-3*time.Minute))
	third := suite.addOrder(2, 1200, now.Add(-2*time.Minute))
	suite.addOrder(12, 1300, now.Add(-time.Minute))

	result, err := suite.handler.Handle(context.Background(), queries.NewGetBatchSuggestionsQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.ElementsMatch([]kernel.UUID{first.ID(), second.ID(), third.ID()}, result[0].OrderIDs)
	suite.Equal(int64(3300), result[0].TotalPrice)
	suite.Positive(result[0].TotalDistanceKm)
	suite.InDelta(4.0/3.0, result[0].AvgPairwisePickupKm, 0.01)
}

func (suite *GetBatchSuggestionsQueryHandlerTestSuite) TestHandle_SkipsOrdersWithActiveOffers() {
	here := suite.location(52.52, 13.40)
	x := suite.addCourier("X", &here)
	offered := suite.addOrder(0, 1000, now.Add(-3*time.Minute))
	suite.addOrder(0.5, 1000, now.Add(-2*time.Minute))
	suite.addOffer(offered, x.ID(), 1, now.Add(-10*time.Second))

	result, err := suite.handler.Handle(context.Background(), queries.NewGetBatchSuggestionsQuery())

	suite.Require().NoError(err)
	suite.Empty(result)
}

func (suite *GetBatchSuggestionsQueryHandlerTestSuite) TestHandle_PolicyUnavailable_ReturnsError() {
	policies := new(portsmock.PolicyProvider)
	policies.On("Current", context.Background()).Return(policy.Policy{}, errors.New("config missing")).Once()
	handler := queries.NewGetBatchSuggestionsQueryHandler(suite.DB, policies, clock)

	_, err := handler.Handle(context.Background(), queries.NewGetBatchSuggestionsQuery())

	suite.Require().ErrorContains(err, "config missing")
	policies.AssertExpectations(suite.T())
}

func TestGetBatchSuggestionsQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetBatchSuggestionsQueryHandlerTestSuite))
}
