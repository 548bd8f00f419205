// Package raterepo keeps the history of activated rates.
package raterepo

import (
	"context"
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/pkg/errs"

	"gorm.io/gorm"
)

type GormRateRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRateRepository(db *gorm.DB, tracker aggregateTracker) *GormRateRepository {
	return &GormRateRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormRateRepository) Add(ctx context.Context, aggregate *rate.Rate) error {
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

// Update only moves the end of the validity window; coefficients of a stored
// rate are never rewritten.
func (r *GormRateRepository) Update(ctx context.Context, aggregate *rate.Rate) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&RateDTO{}).
		Where("id = ?", dto.ID).
		Select("effective_until").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormRateRepository) GetActive(ctx context.Context) (*rate.Rate, error) {
	var dto RateDTO
	err := r.db.WithContext(ctx).
		Where("effective_until IS NULL").
		Order("effective_from DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("rate", "active")
		}
		return nil, err
	}

	return toDomain(dto)
}
