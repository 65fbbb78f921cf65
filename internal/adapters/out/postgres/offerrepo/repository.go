package offerrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// couriersTable is owned by courierrepo; offers only read its availability columns.
const couriersTable = "couriers"

// GormOfferRepository implements ports.OfferRepository using GORM.
type GormOfferRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOfferRepository(db *gorm.DB, tracker aggregateTracker) *GormOfferRepository {
	return &GormOfferRepository{
		db:      db,
		tracker: tracker,
	}
}

// AddIfCourierFree inserts the offer only while the courier is online, has no
// work unit and holds no active offer. It must run inside a transaction: the
// advisory lock is held until commit or rollback, and courierrepo's Occupy
// takes the same lock, so a courier that became busy after the caller listed
// it is seen here.
func (r *GormOfferRepository) AddIfCourierFree(ctx context.Context, o *offer.Offer, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", o.CourierID().String()).Error; err != nil {
		return err
	}

	var free int64
	err := db.Table(couriersTable).
		Where("id = ? AND online = ? AND work_unit_id IS NULL", o.CourierID().Bytes(), true).
		Count(&free).Error
	if err != nil {
		return err
	}
	if free == 0 {
		return errs.NewConflictError("courier", o.CourierID().String(), "offline or already busy")
	}

	var active int64
	err = db.Model(&OfferDTO{}).
		Where("courier_id = ? AND status = ? AND expires_at > ?", o.CourierID().Bytes(), int(offer.Pending), now.UTC()).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return errs.NewConflictError("courier", o.CourierID().String(), "holds an active offer")
	}

	dto := fromDomain(o)
	if err = db.Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(o.ID(), o)
	return nil
}

func (r *GormOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OfferDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("offer", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Resolve writes the terminal state of o if the row is still Pending. An accept
// additionally requires the stored deadline to lie after the response time.
func (r *GormOfferRepository) Resolve(ctx context.Context, o *offer.Offer) (bool, error) {
	if !o.Status().IsTerminal() || o.RespondedAt() == nil {
		return false, errs.NewValueIsInvalidErrorWithCause("offer",
			errors.New("only resolved offers can be written back"))
	}
	respondedAt := o.RespondedAt().UTC()

	query := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Where("id = ? AND status = ?", o.ID().Bytes(), int(offer.Pending))
	if o.Status() == offer.Accepted {
		query = query.Where("expires_at > ?", respondedAt)
	}

	result := query.Updates(map[string]any{
		"status":         int(o.Status()),
		"failure_reason": string(o.FailureReason()),
		"responded_at":   respondedAt,
	})
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 1 {
		r.tracker.TrackAggregate(o.ID(), o)
	}
	return result.RowsAffected == 1, nil
}

// ResolvePendingForOrder closes the order's active offers, optionally sparing one.
// Stale offers are left for expiry so that the timeout penalty still applies.
func (r *GormOfferRepository) ResolvePendingForOrder(
	ctx context.Context,
	orderID kernel.UUID,
	except *kernel.UUID,
	reason offer.FailureReason,
	now time.Time,
) ([]*offer.Offer, error) {
	query := r.db.WithContext(ctx).Where("order_id = ?", orderID.Bytes())
	if except != nil {
		query = query.Where("id <> ?", except.Bytes())
	}
	return r.resolveActive(query, reason, now)
}

// ResolvePendingForCourier closes every active offer held by the courier.
func (r *GormOfferRepository) ResolvePendingForCourier(
	ctx context.Context,
	courierID kernel.UUID,
	reason offer.FailureReason,
	now time.Time,
) ([]*offer.Offer, error) {
	query := r.db.WithContext(ctx).Where("courier_id = ?", courierID.Bytes())
	return r.resolveActive(query, reason, now)
}

func (r *GormOfferRepository) resolveActive(
	scope *gorm.DB,
	reason offer.FailureReason,
	now time.Time,
) ([]*offer.Offer, error) {
	if err := reason.Validate(); err != nil {
		return nil, err
	}
	if reason == offer.ReasonNone || reason == offer.ReasonTimeout {
		return nil, errs.NewValueIsInvalidErrorWithCause("failure reason",
			errors.New("bulk resolution needs a rejection reason"))
	}

	var dtos []OfferDTO
	err := scope.
		Model(&dtos).
		Clauses(clause.Returning{}).
		Where("status = ? AND expires_at > ?", int(offer.Pending), now.UTC()).
		Updates(map[string]any{
			"status":         int(reason.TerminalStatus()),
			"failure_reason": string(reason),
			"responded_at":   now.UTC(),
		}).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// ListStale returns Pending offers whose deadline is not after now, oldest deadline first.
func (r *GormOfferRepository) ListStale(ctx context.Context, now time.Time) ([]*offer.Offer, error) {
	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", int(offer.Pending), now.UTC()).
		Order("expires_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

func (r *GormOfferRepository) LastAttempt(ctx context.Context, orderID kernel.UUID) (int, error) {
	var last int
	err := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Select("COALESCE(MAX(attempt), 0)").
		Where("order_id = ?", orderID.Bytes()).
		Scan(&last).Error
	if err != nil {
		return 0, err
	}

	return last, nil
}

func (r *GormOfferRepository) CourierIDsWithActiveOffers(ctx context.Context, now time.Time) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Distinct("courier_id").
		Where("status = ? AND expires_at > ?", int(offer.Pending), now.UTC()).
		Pluck("courier_id", &raw).Error
	if err != nil {
		return nil, err
	}

	return toUUIDs(raw)
}

// CourierIDsRefusedOrder returns couriers whose offer for the order expired or was
// explicitly rejected. Couriers who lost a race or were superseded may be asked again.
func (r *GormOfferRepository) CourierIDsRefusedOrder(ctx context.Context, orderID kernel.UUID) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Distinct("courier_id").
		Where("order_id = ? AND failure_reason IN ?", orderID.Bytes(),
			[]string{string(offer.ReasonTimeout), string(offer.ReasonExplicitReject)}).
		Pluck("courier_id", &raw).Error
	if err != nil {
		return nil, err
	}

	return toUUIDs(raw)
}

func (r *GormOfferRepository) ListActiveByCourier(
	ctx context.Context,
	courierID kernel.UUID,
	now time.Time,
) ([]*offer.Offer, error) {
	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Where("courier_id = ? AND status = ? AND expires_at > ?", courierID.Bytes(), int(offer.Pending), now.UTC()).
		Order("expires_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

func (r *GormOfferRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*offer.Offer, error) {
	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("attempt, offered_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}
