package portsmock

import (
	"context"

	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

// UnitOfWork mocks the transaction calls and hands out the embedded repositories.
// It satisfies every narrowed unit of work interface of the application layer.
type UnitOfWork struct {
	mock.Mock

	Orders   *OrderRepository
	Couriers *CourierRepository
	Offers   *OfferRepository
	Batches  *BatchRepository
	Audit    *AuditLog
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Orders:   new(OrderRepository),
		Couriers: new(CourierRepository),
		Offers:   new(OfferRepository),
		Batches:  new(BatchRepository),
		Audit:    new(AuditLog),
	}
}

func (m *UnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *UnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *UnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *UnitOfWork) OrderRepository() ports.OrderRepository     { return m.Orders }
func (m *UnitOfWork) CourierRepository() ports.CourierRepository { return m.Couriers }
func (m *UnitOfWork) OfferRepository() ports.OfferRepository     { return m.Offers }
func (m *UnitOfWork) BatchRepository() ports.BatchRepository     { return m.Batches }
func (m *UnitOfWork) AuditLog() ports.AuditLog                   { return m.Audit }

// ExpectTx expects one Begin, at most one Commit and a deferred Rollback.
func (m *UnitOfWork) ExpectTx(ctx context.Context, commit bool) {
	m.On("Begin", ctx).Return(nil).Once()
	if commit {
		m.On("Commit", ctx).Return(nil).Once()
	}
	m.On("Rollback", ctx).Return(nil).Maybe()
}

// AssertAll checks the expectations of the unit of work and every repository.
func (m *UnitOfWork) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.Orders.AssertExpectations(t)
	m.Couriers.AssertExpectations(t)
	m.Offers.AssertExpectations(t)
	m.Batches.AssertExpectations(t)
	m.Audit.AssertExpectations(t)
}
