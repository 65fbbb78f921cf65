// Package courierrepo maps courier aggregates to the couriers table. Counters and
// the work unit are changed with in-place conditional updates, never by
// rewriting the whole row.
package courierrepo

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
type CourierDTO struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name            string      `gorm:"type:varchar(255);not null"`
	Online          bool        `gorm:"not null;default:false;index"`
	Location        LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	PriorityScore   float64     `gorm:"type:double precision;not null;default:0"`
	RejectionsToday int         `gorm:"not null;default:0"`
	WorkUnitKind    *string     `gorm:"type:varchar(16)"`
	WorkUnitID      *uuid.UUID  `gorm:"type:uuid;index"`
}

// TableName overrides GORM's default naming convention to use "couriers".
func (CourierDTO) TableName() string {
	return "couriers"
}

// LocationDTO is the last reported position; both columns are NULL until the
// first report.
type LocationDTO struct {
	Lat *float64 `gorm:"type:double precision"`
	Lon *float64 `gorm:"type:double precision"`
}

func fromDomain(c *courier.Courier) CourierDTO {
	dto := CourierDTO{
		ID:              c.ID().Bytes(),
		Name:            c.Name(),
		Online:          c.IsOnline(),
		PriorityScore:   c.PriorityScore(),
		RejectionsToday: c.RejectionsToday(),
	}

	if loc := c.Location(); loc != nil {
		lat, lon := loc.Lat(), loc.Lon()
		dto.Location = LocationDTO{Lat: &lat, Lon: &lon}
	}
	if unit := c.WorkUnit(); unit != nil {
		kind := unit.Kind().String()
		id := unit.ID().Bytes()
		dto.WorkUnitKind = &kind
		dto.WorkUnitID = &id
	}

	return dto
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Location.Lat != nil && dto.Location.Lon != nil {
		loc, locErr := kernel.NewLocation(*dto.Location.Lat, *dto.Location.Lon)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	var unit *courier.WorkUnit
	if dto.WorkUnitKind != nil && dto.WorkUnitID != nil {
		kind, kindErr := courier.ParseWorkUnitKind(*dto.WorkUnitKind)
		if kindErr != nil {
			return nil, kindErr
		}
		unitID, idErr := kernel.UUIDFromBytes(dto.WorkUnitID[:])
		if idErr != nil {
			return nil, idErr
		}
		restored, unitErr := courier.RestoreWorkUnit(kind, unitID)
		if unitErr != nil {
			return nil, unitErr
		}
		unit = &restored
	}

	return courier.RestoreCourier(
		id,
		dto.Name,
		dto.Online,
		location,
		dto.PriorityScore,
		dto.RejectionsToday,
		unit,
	)
}
