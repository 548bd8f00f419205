package queries

import (
	"context"
	"errors"
	"math"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListDeliverersByMinimumRatingQueryIsNotConstructed = errors.New(
	"ListDeliverersByMinimumRatingQuery must be created via NewListDeliverersByMinimumRatingQuery constructor",
)

// ListDeliverersByMinimumRatingQuery lists deliverers whose average rating is
// at least the given value, best first. A minimum of zero lists everyone,
// including deliverers that were never rated.
type ListDeliverersByMinimumRatingQuery struct {
	minRating float64
	guard     guard.ConstructorGuard
}

func NewListDeliverersByMinimumRatingQuery(minRating float64) (ListDeliverersByMinimumRatingQuery, error) {
	if math.IsNaN(minRating) || minRating < 0 || minRating > deliverer.MaxRating {
		return ListDeliverersByMinimumRatingQuery{},
			errs.NewValueIsOutOfRangeError("minRating", minRating, 0, deliverer.MaxRating)
	}
	return ListDeliverersByMinimumRatingQuery{minRating: minRating, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDeliverersByMinimumRatingQuery) Validate() error {
	return q.guard.Validate(ErrListDeliverersByMinimumRatingQueryIsNotConstructed)
}

func (q ListDeliverersByMinimumRatingQuery) MinRating() float64 {
	return q.minRating
}

type ListDeliverersByMinimumRatingQueryHandler struct {
	db *gorm.DB
}

func NewListDeliverersByMinimumRatingQueryHandler(db *gorm.DB) ListDeliverersByMinimumRatingQueryHandler {
	return ListDeliverersByMinimumRatingQueryHandler{db: db}
}

func (h ListDeliverersByMinimumRatingQueryHandler) Handle(
	ctx context.Context,
	query ListDeliverersByMinimumRatingQuery,
) ([]DelivererView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []delivererRow
	if err := h.db.WithContext(ctx).Raw(`
		SELECT `+delivererColumns+`
		FROM deliverers d
		WHERE d.average_rating >= ?
		ORDER BY d.average_rating DESC, d.name, d.id
	`, activeShipmentStatuses(), query.MinRating()).Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]DelivererView, 0, len(rows))
	for _, row := range rows {
		v, err := row.view()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
