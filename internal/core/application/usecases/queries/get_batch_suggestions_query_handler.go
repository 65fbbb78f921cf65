package queries

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetBatchSuggestionsQueryHandler clusters waiting orders by pickup proximity using
// the radius and size limit of the current policy.
type GetBatchSuggestionsQueryHandler struct {
	db        *gorm.DB
	policies  ports.PolicyProvider
	clock     ports.Clock
	clusterer services.BatchClusterer
}

func NewGetBatchSuggestionsQueryHandler(
	db *gorm.DB,
	policies ports.PolicyProvider,
	clock ports.Clock,
) GetBatchSuggestionsQueryHandler {
	return GetBatchSuggestionsQueryHandler{
		db:        db,
		policies:  policies,
		clock:     clock,
		clusterer: services.NewBatchClusterer(),
	}
}

func (h GetBatchSuggestionsQueryHandler) Handle(
	ctx context.Context,
	query GetBatchSuggestionsQuery,
) ([]GetBatchSuggestionsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	pol, err := h.policies.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}

	waiting, err := h.waitingOrders(ctx, h.clock.Now())
	if err != nil {
		return nil, err
	}

	proposals := h.clusterer.Suggest(waiting, pol.ClusterRadiusKm, pol.MaxBatchSize)

	suggestions := make([]GetBatchSuggestionsQueryResponse, 0, len(proposals))
	for _, p := range proposals {
		suggestions = append(suggestions, GetBatchSuggestionsQueryResponse{
			OrderIDs:            p.OrderIDs,
			TotalPrice:          p.TotalPrice,
			TotalDistanceKm:     p.TotalDistanceKm,
			AvgPairwisePickupKm: p.AvgPairwisePickupKm,
		})
	}
	return suggestions, nil
}

// waitingOrders loads Pending, unassigned orders that hold no active offer.
func (h GetBatchSuggestionsQueryHandler) waitingOrders(ctx context.Context, now time.Time) ([]*order.Order, error) {
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
			o.created_at
		FROM orders o
		WHERE o.status = ? AND o.courier_id IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM offers f
				WHERE f.order_id = o.id AND f.status = ? AND f.expires_at > ?
			)
		ORDER BY o.created_at, o.id
	`, int(order.Pending), int(offer.Pending), now.UTC()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*order.Order, 0)
	for rows.Next() {
		var (
			id, customerID          uuid.UUID
			pickupLat, pickupLon    float64
			dropoffLat, dropoffLon  float64
			pickupLine, dropoffLine string
			price                   int64
			createdAt               time.Time
		)

		err = rows.Scan(
			&id,
			&customerID,
			&pickupLat,
			&pickupLon,
			&pickupLine,
			&dropoffLat,
			&dropoffLon,
			&dropoffLine,
			&price,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		o, restoreErr := restoreWaitingOrder(id, customerID,
			pickupLat, pickupLon, pickupLine, dropoffLat, dropoffLon, dropoffLine, price, createdAt)
		if restoreErr != nil {
			return nil, restoreErr
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func restoreWaitingOrder(
	id, customerID uuid.UUID,
	pickupLat, pickupLon float64, pickupLine string,
	dropoffLat, dropoffLon float64, dropoffLine string,
	price int64,
	createdAt time.Time,
) (*order.Order, error) {
	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	customer, err := kernel.UUIDFromBytes(customerID[:])
	if err != nil {
		return nil, err
	}
	pickup, err := address(pickupLat, pickupLon, pickupLine)
	if err != nil {
		return nil, err
	}
	dropoff, err := address(dropoffLat, dropoffLon, dropoffLine)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(orderID, customer, pickup, dropoff, price, order.Pending, nil, nil, 0, createdAt)
}

func address(lat, lon float64, line string) (order.Address, error) {
	loc, err := kernel.NewLocation(lat, lon)
	if err != nil {
		return order.Address{}, err
	}
	return order.NewAddress(loc, line)
}
