package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetCourierOffersQueryHandler struct {
	db    *gorm.DB
	clock ports.Clock
}

func NewGetCourierOffersQueryHandler(db *gorm.DB, clock ports.Clock) GetCourierOffersQueryHandler {
	return GetCourierOffersQueryHandler{db: db, clock: clock}
}

// Handle returns the courier's Pending offers whose deadline is still ahead,
// soonest deadline first. Stale offers are hidden even before a sweep expires them.
func (h GetCourierOffersQueryHandler) Handle(
	ctx context.Context,
	query GetCourierOffersQuery,
) ([]GetCourierOffersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	offers := make([]GetCourierOffersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			f.id,
			f.order_id,
			f.attempt,
			f.distance_to_pickup_km,
			f.offered_at,
			f.expires_at,
			o.pickup_lat,
			o.pickup_lon,
			o.pickup_line,
			o.dropoff_lat,
			o.dropoff_lon,
			o.dropoff_line,
			o.price
		FROM offers f
		JOIN orders o ON o.id = f.order_id
		WHERE f.courier_id = ? AND f.status = ? AND f.expires_at > ?
		ORDER BY f.expires_at, f.id
	`, query.CourierID().Bytes(), int(offer.Pending), h.clock.Now().UTC()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp                   GetCourierOffersQueryResponse
			offerID, orderID       uuid.UUID
			pickupLat, pickupLon   float64
			dropoffLat, dropoffLon float64
		)

		err = rows.Scan(
			&offerID,
			&orderID,
			&resp.Attempt,
			&resp.DistanceToPickupKm,
			&resp.OfferedAt,
			&resp.ExpiresAt,
			&pickupLat,
			&pickupLon,
			&resp.PickupLine,
			&dropoffLat,
			&dropoffLon,
			&resp.DropoffLine,
			&resp.Price,
		)
		if err != nil {
			return nil, err
		}

		if resp.OfferID, err = kernel.UUIDFromBytes(offerID[:]); err != nil {
			return nil, err
		}
		if resp.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		if resp.Pickup, err = kernel.NewLocation(pickupLat, pickupLon); err != nil {
			return nil, err
		}
		if resp.Dropoff, err = kernel.NewLocation(dropoffLat, dropoffLon); err != nil {
			return nil, err
		}

		offers = append(offers, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}
