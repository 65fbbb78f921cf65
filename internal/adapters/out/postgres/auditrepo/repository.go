// Package auditrepo appends dispatch decisions to the dispatch_events table.
package auditrepo

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Kind       string     `gorm:"type:varchar(32);not null;index"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	OfferID    *uuid.UUID `gorm:"type:uuid"`
	CourierID  *uuid.UUID `gorm:"type:uuid;index"`
	Attempt    int        `gorm:"not null;default:0"`
	Detail     string     `gorm:"type:text;not null;default:''"`
	OccurredAt time.Time  `gorm:"not null;index"`
}

// TableName overrides GORM's default naming convention to use "dispatch_events".
func (EventDTO) TableName() string {
	return "dispatch_events"
}

// GormAuditLog implements ports.AuditLog using GORM. Rows are only ever inserted.
type GormAuditLog struct {
	db *gorm.DB
}

func NewGormAuditLog(db *gorm.DB) *GormAuditLog {
	return &GormAuditLog{db: db}
}

func (l *GormAuditLog) Append(ctx context.Context, events ...audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(e))
	}

	return l.db.WithContext(ctx).Create(&dtos).Error
}

// ListByOrder returns the order's events in the order they happened.
func (l *GormAuditLog) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]audit.Event, error) {
	var dtos []EventDTO
	err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("occurred_at, kind, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]audit.Event, 0, len(dtos))
	for _, dto := range dtos {
		e, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		events = append(events, e)
	}
	return events, nil
}

func fromDomain(e audit.Event) EventDTO {
	dto := EventDTO{
		ID:         e.ID.Bytes(),
		Kind:       string(e.Kind),
		OrderID:    e.OrderID.Bytes(),
		Attempt:    e.Attempt,
		Detail:     e.Detail,
		OccurredAt: e.OccurredAt.UTC(),
	}
	if e.OfferID != nil {
		raw := e.OfferID.Bytes()
		dto.OfferID = &raw
	}
	if e.CourierID != nil {
		raw := e.CourierID.Bytes()
		dto.CourierID = &raw
	}
	return dto
}

func toDomain(dto EventDTO) (audit.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return audit.Event{}, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return audit.Event{}, err
	}

	e := audit.Event{
		ID:         id,
		Kind:       audit.Kind(dto.Kind),
		OrderID:    orderID,
		Attempt:    dto.Attempt,
		Detail:     dto.Detail,
		OccurredAt: dto.OccurredAt,
	}
	if dto.OfferID != nil {
		offerID, idErr := kernel.UUIDFromBytes(dto.OfferID[:])
		if idErr != nil {
			return audit.Event{}, idErr
		}
		e.OfferID = &offerID
	}
	if dto.CourierID != nil {
		courierID, idErr := kernel.UUIDFromBytes(dto.CourierID[:])
		if idErr != nil {
			return audit.Event{}, idErr
		}
		e.CourierID = &courierID
	}
	return e, nil
}
