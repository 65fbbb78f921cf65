package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAllCouriersQueryHandler reads couriers with raw SQL, bypassing the aggregates.
type GetAllCouriersQueryHandler struct {
	db *gorm.DB
}

func NewGetAllCouriersQueryHandler(db *gorm.DB) GetAllCouriersQueryHandler {
	return GetAllCouriersQueryHandler{db: db}
}

// Handle returns all couriers sorted by name.
func (h GetAllCouriersQueryHandler) Handle(
	ctx context.Context,
	query GetAllCouriersQuery,
) ([]GetAllCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers := make([]GetAllCouriersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			online,
			location_lat,
			location_lon,
			priority_score,
			rejections_today,
			work_unit_kind,
			work_unit_id
		FROM couriers
		ORDER BY name, id
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c        GetAllCouriersQueryResponse
			id       uuid.UUID
			lat, lon sql.NullFloat64
			unitKind sql.NullString
			unitID   uuid.NullUUID
		)

		err = rows.Scan(
			&id,
			&c.Name,
			&c.Online,
			&lat,
			&lon,
			&c.PriorityScore,
			&c.RejectionsToday,
			&unitKind,
			&unitID,
		)
		if err != nil {
			return nil, err
		}

		if c.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if lat.Valid && lon.Valid {
			location, locErr := kernel.NewLocation(lat.Float64, lon.Float64)
			if locErr != nil {
				return nil, locErr
			}
			c.Location = &location
		}
		if unitID.Valid {
			workUnitID, idErr := kernel.UUIDFromBytes(unitID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			c.WorkUnitID = &workUnitID
			c.WorkUnitKind = unitKind.String
		}

		couriers = append(couriers, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
