package queries_test

import (
	"context"
	"testing"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/suite"
)

type GetAllCouriersQueryHandlerTestSuite struct {
	readSuite
	handler queries.GetAllCouriersQueryHandler
}

func (suite *GetAllCouriersQueryHandlerTestSuite) SetupSuite() {
	suite.readSuite.SetupSuite()
	suite.handler = queries.NewGetAllCouriersQueryHandler(suite.DB)
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	result, err := suite.handler.Handle(context.Background(), queries.NewGetAllCouriersQuery())

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TestHandle_WithCouriers_ReturnsAllCouriersOrderedByName() {
	ctx := context.Background()
	berlin := suite.location(52.52, 13.40)
	charlie := suite.addCourier("Charlie", &berlin)
	alice := suite.addCourier("Alice", nil)
	bob := suite.addCourier("Bob", &berlin)

	unit, err := courier.NewBatchWorkUnit(kernel.NewUUID())
	suite.Require().NoError(err)
	occupied, err := suite.factory.Create().CourierRepository().Occupy(ctx, bob.ID(), unit)
	suite.Require().NoError(err)
	suite.Require().True(occupied)
	suite.Require().NoError(suite.factory.Create().CourierRepository().
		AddPenalty(ctx, charlie.ID(), courier.Penalty{Points: 7.5, Rejections: 2}))

	result, err := suite.handler.Handle(ctx, queries.NewGetAllCouriersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 3)

	suite.Equal("Alice", result[0].Name)
	suite.Equal(alice.ID(), result[0].ID)
	suite.False(result[0].Online)
	suite.Nil(result[0].Location)
	suite.Nil(result[0].WorkUnitID)

	suite.Equal("Bob", result[1].Name)
	suite.Require().NotNil(result[1].WorkUnitID)
	suite.Equal(unit.ID(), *result[1].WorkUnitID)
	suite.Equal("batch", result[1].WorkUnitKind)

	suite.Equal("Charlie", result[2].Name)
	suite.True(result[2].Online)
	suite.Require().NotNil(result[2].Location)
	suite.True(berlin.IsEqual(*result[2].Location))
	suite.InDelta(7.5, result[2].PriorityScore, 1e-9)
	suite.Equal(2, result[2].RejectionsToday)
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	result, err := suite.handler.Handle(context.Background(), queries.GetAllCouriersQuery{})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetAllCouriersQuery constructor")
}

func (suite *GetAllCouriersQueryHandlerTestSuite) TestHandle_ContextCancellation_ReturnsError() {
	suite.addCourier("Alice", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := suite.handler.Handle(ctx, queries.NewGetAllCouriersQuery())

	suite.Require().Error(err)
	suite.Nil(result)
}

func TestGetAllCouriersQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetAllCouriersQueryHandlerTestSuite))
}
