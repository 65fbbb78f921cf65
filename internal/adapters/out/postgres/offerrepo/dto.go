// Package offerrepo persists offers. Offer creation is serialized per courier with a
// transaction-scoped advisory lock, and every resolution is a conditional update on
// the Pending status.
package offerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"

	"github.com/google/uuid"
)

// OfferDTO represents the database structure for persisting offers.
type OfferDTO struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	CourierID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_offers_courier_status,priority:1"`
	DistanceToPickupKm float64    `gorm:"type:double precision;not null"`
	Attempt            int        `gorm:"not null"`
	Status             int        `gorm:"type:smallint;not null;index:idx_offers_courier_status,priority:2;index:idx_offers_status_expires,priority:1"`
	FailureReason      string     `gorm:"type:varchar(32);not null;default:''"`
	OfferedAt          time.Time  `gorm:"not null"`
	ExpiresAt          time.Time  `gorm:"not null;index:idx_offers_status_expires,priority:2"`
	RespondedAt        *time.Time
}

// TableName overrides GORM's default naming convention to use "offers".
func (OfferDTO) TableName() string {
	return "offers"
}

func fromDomain(o *offer.Offer) OfferDTO {
	dto := OfferDTO{
		ID:                 o.ID().Bytes(),
		OrderID:            o.OrderID().Bytes(),
		CourierID:          o.CourierID().Bytes(),
		DistanceToPickupKm: o.DistanceToPickupKm(),
		Attempt:            o.Attempt(),
		Status:             int(o.Status()),
		FailureReason:      string(o.FailureReason()),
		OfferedAt:          o.OfferedAt().UTC(),
		ExpiresAt:          o.ExpiresAt().UTC(),
	}
	if at := o.RespondedAt(); at != nil {
		utc := at.UTC()
		dto.RespondedAt = &utc
	}
	return dto
}

func toDomain(dto OfferDTO) (*offer.Offer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	return offer.RestoreOffer(
		id,
		orderID,
		courierID,
		dto.DistanceToPickupKm,
		dto.Attempt,
		offer.Status(dto.Status),
		offer.FailureReason(dto.FailureReason),
		dto.OfferedAt,
		dto.ExpiresAt,
		dto.RespondedAt,
	)
}

func toDomainList(dtos []OfferDTO) ([]*offer.Offer, error) {
	offers := make([]*offer.Offer, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, nil
}

func toUUIDs(raw []uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
