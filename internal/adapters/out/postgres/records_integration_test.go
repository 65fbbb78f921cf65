package postgres_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/auditrepo"
	"dispatch/internal/adapters/out/postgres/batchrepo"
	"dispatch/internal/adapters/out/postgres/operatorrepo"
	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

// RecordsIntegrationTestSuite covers the append-only and reference tables:
// batches, dispatch events and operators.
type RecordsIntegrationTestSuite struct {
	pgtest.Suite
}

func (suite *RecordsIntegrationTestSuite) SetupSuite() {
	suite.Models = []any{&batchrepo.BatchDTO{}, &auditrepo.EventDTO{}, &operatorrepo.OperatorDTO{}}
	suite.Suite.SetupSuite()
}

func (suite *RecordsIntegrationTestSuite) TestBatch_KeepsStopSequence() {
	ctx := context.Background()
	repository := batchrepo.NewGormBatchRepository(suite.DB, noopTracker{})
	orderIDs := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()}
	b, err := batch.NewBatch(kernel.NewUUID(), kernel.NewUUID(), orderIDs, 3600, 7.25,
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)

	suite.Require().NoError(repository.Add(ctx, b))
	stored, err := repository.Get(ctx, b.ID())

	suite.Require().NoError(err)
	suite.Equal(orderIDs, stored.OrderIDs())
	suite.Equal(int64(3600), stored.TotalPrice())
	suite.InDelta(7.25, stored.TotalDistanceKm(), 1e-9)
	suite.Equal(3, stored.Stops()[2].Sequence)

	_, err = repository.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *RecordsIntegrationTestSuite) TestAuditLog_ListsEventsInOrder() {
	ctx := context.Background()
	log := auditrepo.NewGormAuditLog(suite.DB)
	orderID := kernel.NewUUID()
	offerID, courierID := kernel.NewUUID(), kernel.NewUUID()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	created, err := audit.NewEvent(audit.KindOfferCreated, orderID, 1, "distance 1.00 km", at)
	suite.Require().NoError(err)
	expired, err := audit.NewEvent(audit.KindOfferExpired, orderID, 1, "", at.Add(time.Minute))
	suite.Require().NoError(err)
	other, err := audit.NewEvent(audit.KindOrderCancelled, kernel.NewUUID(), 0, "", at)
	suite.Require().NoError(err)

	suite.Require().NoError(log.Append(ctx, expired.WithOffer(offerID, courierID), created.WithOffer(offerID, courierID), other))
	suite.Require().NoError(log.Append(ctx))

	events, err := log.ListByOrder(ctx, orderID)

	suite.Require().NoError(err)
	suite.Require().Len(events, 2)
	suite.Equal(audit.KindOfferCreated, events[0].Kind)
	suite.Equal(audit.KindOfferExpired, events[1].Kind)
	suite.Require().NotNil(events[1].OfferID)
	suite.True(offerID.IsEqual(*events[1].OfferID))
	suite.True(courierID.IsEqual(*events[1].CourierID))
}

func (suite *RecordsIntegrationTestSuite) TestOperatorDirectory_RegisterIsIdempotent() {
	ctx := context.Background()
	directory := operatorrepo.NewGormOperatorDirectory(suite.DB)
	id := kernel.NewUUID()

	suite.Require().NoError(directory.Register(ctx, ports.Operator{ID: id, Name: "Night shift", Email: "night@example.com"}))
	suite.Require().NoError(directory.Register(ctx, ports.Operator{ID: id, Name: "Night desk", Email: "night@example.com"}))
	suite.Require().ErrorIs(directory.Register(ctx, ports.Operator{ID: kernel.NewUUID(), Name: "x", Email: " "}),
		errs.ErrValueIsRequired)

	operators, err := directory.ListOperators(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(operators, 1)
	suite.Equal("Night desk", operators[0].Name)
	suite.True(id.IsEqual(operators[0].ID))
}

func TestRecordsIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RecordsIntegrationTestSuite))
}
