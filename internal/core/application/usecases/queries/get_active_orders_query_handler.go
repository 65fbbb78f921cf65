package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves Pending and Accepted orders with their
// offer progress.
//
// Example:
//
//	handler := NewGetActiveOrdersQueryHandler(db, clock)
//	orders, err := handler.Handle(ctx, NewGetActiveOrdersQuery())
type GetActiveOrdersQueryHandler struct {
	db    *gorm.DB
	clock ports.Clock
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB, clock ports.Clock) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db, clock: clock}
}

// Handle returns active orders oldest first.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.customer_id,
			o.pickup_lat,
			o.pickup_lon,
			o.pickup_line,
			o.dropoff_lat,
			o.dropoff_lon,
			o.dropoff_line,
			o.price,
			o.status,
			o.courier_id,
			o.batch_id,
			o.batch_sequence,
			o.created_at,
			COUNT(f.id) FILTER (WHERE f.status = ? AND f.expires_at > ?) AS active_offers,
			COALESCE(MAX(f.attempt), 0) AS attempts
		FROM orders o
		LEFT JOIN offers f ON f.order_id = o.id
		WHERE o.status IN (?, ?)
		GROUP BY o.id
		ORDER BY o.created_at, o.id
	`, int(offer.Pending), h.clock.Now().UTC(), int(order.Pending), int(order.Accepted)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp                   GetActiveOrdersQueryResponse
			id, customerID         uuid.UUID
			pickupLat, pickupLon   float64
			dropoffLat, dropoffLon float64
			status                 int
			courierID, batchID     uuid.NullUUID
		)

		err = rows.Scan(
			&id,
			&customerID,
			&pickupLat,
			&pickupLon,
			&resp.PickupLine,
			&dropoffLat,
			&dropoffLon,
			&resp.DropoffLine,
			&resp.Price,
			&status,
			&courierID,
			&batchID,
			&resp.BatchSequence,
			&resp.CreatedAt,
			&resp.ActiveOffers,
			&resp.Attempts,
		)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
			return nil, err
		}
		if resp.Pickup, err = kernel.NewLocation(pickupLat, pickupLon); err != nil {
			return nil, err
		}
		if resp.Dropoff, err = kernel.NewLocation(dropoffLat, dropoffLon); err != nil {
			return nil, err
		}
		if resp.CourierID, err = nullableID(courierID); err != nil {
			return nil, err
		}
		if resp.BatchID, err = nullableID(batchID); err != nil {
			return nil, err
		}
		resp.Status = order.Status(status).String()

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func nullableID(id uuid.NullUUID) (*kernel.UUID, error) {
	if !id.Valid {
		return nil, nil //nolint:nilnil // absent reference
	}
	parsed, err := kernel.UUIDFromBytes(id.UUID[:])
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
