package courierrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCourierRepository implements ports.CourierRepository using GORM.
type GormCourierRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCourierRepository creates a new GORM courier repository.
func NewGormCourierRepository(db *gorm.DB, tracker aggregateTracker) *GormCourierRepository {
	return &GormCourierRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new courier to the database.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
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

// Get retrieves a courier by ID.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListAvailable returns online, located couriers without a work unit. Rows that
// fail to restore are left out and reported through errs.SkippedRecordsError.
func (r *GormCourierRepository) ListAvailable(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	err := r.db.WithContext(ctx).
		Where("online = ? AND location_lat IS NOT NULL AND location_lon IS NOT NULL AND work_unit_id IS NULL", true).
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	var (
		skipped []string
		causes  []error
	)
	for _, dto := range dtos {
		c, convErr := toDomain(dto)
		if convErr != nil {
			skipped = append(skipped, dto.ID.String())
			causes = append(causes, convErr)
			continue
		}
		couriers = append(couriers, c)
	}
	if len(skipped) > 0 {
		return couriers, errs.NewSkippedRecordsError("courier", skipped, errors.Join(causes...))
	}

	return couriers, nil
}

// UpdatePresence writes the presence columns only.
func (r *GormCourierRepository) UpdatePresence(
	ctx context.Context,
	id kernel.UUID,
	online bool,
	location *kernel.Location,
) error {
	values := map[string]any{"online": online}
	if location != nil {
		values["location_lat"] = location.Lat()
		values["location_lon"] = location.Lon()
	}

	return updateExisting(id, r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(values))
}

func (r *GormCourierRepository) UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	return updateExisting(id, r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{
			"location_lat": location.Lat(),
			"location_lon": location.Lon(),
		}))
}

// AddPenalty increments the counters in SQL so concurrent penalties add up.
func (r *GormCourierRepository) AddPenalty(ctx context.Context, id kernel.UUID, penalty courier.Penalty) error {
	if penalty.IsZero() {
		return nil
	}

	return updateExisting(id, r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{
			"priority_score":   gorm.Expr("priority_score + ?", penalty.Points),
			"rejections_today": gorm.Expr("rejections_today + ?", penalty.Rejections),
		}))
}

// Occupy sets the work unit only while the courier has none. It takes the
// courier's advisory lock first, the one offerrepo holds while creating an
// offer, so an offer and an occupation never interleave.
func (r *GormCourierRepository) Occupy(ctx context.Context, id kernel.UUID, unit courier.WorkUnit) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", id.String()).Error; err != nil {
		return false, err
	}

	result := db.
		Model(&CourierDTO{}).
		Where("id = ? AND work_unit_id IS NULL", id.Bytes()).
		Updates(map[string]any{
			"work_unit_kind": unit.Kind().String(),
			"work_unit_id":   unit.ID().Bytes(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func updateExisting(id kernel.UUID, result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", id.String())
	}
	return nil
}
