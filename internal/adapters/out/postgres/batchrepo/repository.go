package batchrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormBatchRepository implements ports.BatchRepository using GORM.
type GormBatchRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormBatchRepository(db *gorm.DB, tracker aggregateTracker) *GormBatchRepository {
	return &GormBatchRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormBatchRepository) Add(ctx context.Context, b *batch.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}

	dto := fromDomain(b)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(b.ID(), b)
	return nil
}

func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BatchDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
