// Package batchrepo persists confirmed batches. Member order ids are stored as a
// text array in visiting sequence.
package batchrepo

import (
	"time"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BatchDTO struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CourierID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrderIDs        pq.StringArray `gorm:"type:text[];not null"`
	TotalPrice      int64          `gorm:"not null"`
	TotalDistanceKm float64        `gorm:"type:double precision;not null"`
	CreatedAt       time.Time      `gorm:"not null"`
}

// TableName overrides GORM's default naming convention to use "batches".
func (BatchDTO) TableName() string {
	return "batches"
}

func fromDomain(b *batch.Batch) BatchDTO {
	ids := make(pq.StringArray, 0, b.Size())
	for _, stop := range b.Stops() {
		ids = append(ids, stop.OrderID.String())
	}

	return BatchDTO{
		ID:              b.ID().Bytes(),
		CourierID:       b.CourierID().Bytes(),
		OrderIDs:        ids,
		TotalPrice:      b.TotalPrice(),
		TotalDistanceKm: b.TotalDistanceKm(),
		CreatedAt:       b.CreatedAt().UTC(),
	}
}

func toDomain(dto BatchDTO) (*batch.Batch, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	orderIDs := make([]kernel.UUID, 0, len(dto.OrderIDs))
	for _, raw := range dto.OrderIDs {
		orderID, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		orderIDs = append(orderIDs, orderID)
	}

	return batch.NewBatch(id, courierID, orderIDs, dto.TotalPrice, dto.TotalDistanceKm, dto.CreatedAt)
}
