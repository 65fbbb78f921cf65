// Package orderrepo maps order aggregates to the orders table and implements the
// conditional state transitions the dispatch core relies on.
package orderrepo

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The composite index on (status, created_at) serves the sweep's oldest-first scan.
type OrderDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Pickup        AddressDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff       AddressDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	Price         int64      `gorm:"not null"`
	Status        int        `gorm:"type:smallint;not null;index:idx_orders_status_created,priority:1"`
	CourierID     *uuid.UUID `gorm:"type:uuid;index"`
	BatchID       *uuid.UUID `gorm:"type:uuid;index"`
	BatchSequence int        `gorm:"not null;default:0"`
	CreatedAt     time.Time  `gorm:"not null;index:idx_orders_status_created,priority:2"`
}

// TableName overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO is the embedded geocoded address.
type AddressDTO struct {
	Lat  float64 `gorm:"type:double precision;not null"`
	Lon  float64 `gorm:"type:double precision;not null"`
	Line string  `gorm:"type:varchar(512);not null;default:''"`
}

func addressFromDomain(a order.Address) AddressDTO {
	return AddressDTO{
		Lat:  a.Location().Lat(),
		Lon:  a.Location().Lon(),
		Line: a.Line(),
	}
}

func (a AddressDTO) toDomain() (order.Address, error) {
	loc, err := kernel.NewLocation(a.Lat, a.Lon)
	if err != nil {
		return order.Address{}, err
	}
	return order.NewAddress(loc, a.Line)
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:         o.ID().Bytes(),
		CustomerID: o.CustomerID().Bytes(),
		Pickup:     addressFromDomain(o.Pickup()),
		Dropoff:    addressFromDomain(o.Dropoff()),
		Price:      o.Price(),
		Status:     int(o.Status()),
		CreatedAt:  o.CreatedAt().UTC(),
	}

	if id := o.Courier(); id != nil {
		raw := id.Bytes()
		dto.CourierID = &raw
	}
	if batchID, seq := o.Batch(); batchID != nil {
		raw := batchID.Bytes()
		dto.BatchID = &raw
		dto.BatchSequence = seq
	}

	return dto
}

// toDomain reconstructs the aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	courierID, err := optionalUUID(dto.CourierID)
	if err != nil {
		return nil, err
	}
	batchID, err := optionalUUID(dto.BatchID)
	if err != nil {
		return nil, err
	}

	pickup, err := dto.Pickup.toDomain()
	if err != nil {
		return nil, err
	}
	dropoff, err := dto.Dropoff.toDomain()
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		customerID,
		pickup,
		dropoff,
		dto.Price,
		order.Status(dto.Status),
		courierID,
		batchID,
		dto.BatchSequence,
		dto.CreatedAt,
	)
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// toDomainListSkipping restores what it can and reports the rest in an
// errs.SkippedRecordsError next to the restored orders.
func toDomainListSkipping(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	var (
		skipped []string
		causes  []error
	)
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			skipped = append(skipped, dto.ID.String())
			causes = append(causes, err)
			continue
		}
		orders = append(orders, o)
	}
	if len(skipped) > 0 {
		return orders, errs.NewSkippedRecordsError("order", skipped, errors.Join(causes...))
	}
	return orders, nil
}

func optionalUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil // absent reference
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
