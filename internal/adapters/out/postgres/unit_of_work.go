// Package postgres provides the GORM-based Unit of Work that spans every
// dispatch repository.
//
// Repositories obtained after Begin share the transaction; repositories obtained
// without Begin run each statement on its own. Writes that rely on locking,
// such as OfferRepository.AddIfCourierFree, must run inside a transaction.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	claimed, err := uow.OrderRepository().Claim(ctx, orderID, courierID)
//	if err != nil || !claimed {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides isolated transactions
//   - Multiple goroutines should use separate UnitOfWork instances
//   - State transitions are conditional updates; losing one is reported, not retried
package postgres

import (
	"context"

	"dispatch/internal/adapters/out/postgres/auditrepo"
	"dispatch/internal/adapters/out/postgres/batchrepo"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/offerrepo"
	"dispatch/internal/adapters/out/postgres/operatorrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction across the order, courier,
// offer and batch repositories and the audit log.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin starts a transaction. Calling it again while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes the transaction. It fails with gorm.ErrInvalidTransaction when
// none is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. After Commit it returns
// gorm.ErrInvalidTransaction, which deferred rollbacks ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) CourierRepository() ports.CourierRepository {
	return courierrepo.NewGormCourierRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OfferRepository() ports.OfferRepository {
	return offerrepo.NewGormOfferRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) BatchRepository() ports.BatchRepository {
	return batchrepo.NewGormBatchRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) AuditLog() ports.AuditLog {
	return auditrepo.NewGormAuditLog(uow.conn())
}

// TrackAggregate registers an aggregate written within this unit of work.
// Repositories call it after successful inserts and conditional updates.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount reports how many aggregates were written in the current unit of work.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// Models lists every table the dispatch service owns, for AutoMigrate.
func Models() []any {
	return []any{
		&orderrepo.OrderDTO{},
		&courierrepo.CourierDTO{},
		&offerrepo.OfferDTO{},
		&batchrepo.BatchDTO{},
		&auditrepo.EventDTO{},
		&operatorrepo.OperatorDTO{},
	}
}
