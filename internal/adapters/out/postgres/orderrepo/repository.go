package orderrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetMany returns the orders that exist among ids, in no particular order.
func (r *GormOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	if len(ids) == 0 {
		return []*order.Order{}, nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Where("id = ANY(?)", pq.Array(raw)).Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// ListAwaitingDistribution returns Pending unassigned orders that have no active
// offer, oldest first. Rows that fail to restore are left out and reported
// through errs.SkippedRecordsError.
func (r *GormOrderRepository) ListAwaitingDistribution(ctx context.Context, now time.Time) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND courier_id IS NULL", int(order.Pending)).
		Where(`NOT EXISTS (
			SELECT 1 FROM offers
			WHERE offers.order_id = orders.id AND offers.status = ? AND offers.expires_at > ?
		)`, int(offer.Pending), now.UTC()).
		Order("created_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainListSkipping(dtos)
}

// Claim assigns a Pending unassigned order to the courier.
func (r *GormOrderRepository) Claim(ctx context.Context, orderID, courierID kernel.UUID) (bool, error) {
	return r.claim(ctx, orderID, map[string]any{
		"status":     int(order.Accepted),
		"courier_id": courierID.Bytes(),
	})
}

// ClaimForBatch assigns a Pending unassigned order as one stop of a batch.
func (r *GormOrderRepository) ClaimForBatch(
	ctx context.Context,
	orderID, courierID, batchID kernel.UUID,
	sequence int,
) (bool, error) {
	return r.claim(ctx, orderID, map[string]any{
		"status":         int(order.Accepted),
		"courier_id":     courierID.Bytes(),
		"batch_id":       batchID.Bytes(),
		"batch_sequence": sequence,
	})
}

// TransitionStatus moves an unassigned order between statuses.
func (r *GormOrderRepository) TransitionStatus(
	ctx context.Context,
	orderID kernel.UUID,
	from, to order.Status,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND courier_id IS NULL", orderID.Bytes(), int(from)).
		Update("status", int(to))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *GormOrderRepository) claim(ctx context.Context, orderID kernel.UUID, values map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND courier_id IS NULL", orderID.Bytes(), int(order.Pending)).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
