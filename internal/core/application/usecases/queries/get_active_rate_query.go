package queries

import (
	"context"
	"errors"
	"time"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/ports"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrGetActiveRateQueryIsNotConstructed = errors.New(
	"GetActiveRateQuery must be created via NewGetActiveRateQuery constructor",
)

type GetActiveRateQuery struct {
	guard guard.ConstructorGuard
}

func NewGetActiveRateQuery() GetActiveRateQuery {
	return GetActiveRateQuery{guard: guard.NewConstructorGuard()}
}

func (q GetActiveRateQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveRateQueryIsNotConstructed)
}

// GetActiveRateQueryResponse describes the rate new shipments are priced
// with. ID and EffectiveFrom are empty while the built-in default applies.
type GetActiveRateQueryResponse struct {
	ID            *kernel.UUID
	Tariff        rate.Tariff
	EffectiveFrom *time.Time
	IsDefault     bool
}

// GetActiveRateQueryHandler answers from the rate cache when it can.
type GetActiveRateQueryHandler struct {
	db    *gorm.DB
	cache ports.RateCache
}

// NewGetActiveRateQueryHandler accepts a nil cache.
func NewGetActiveRateQueryHandler(db *gorm.DB, cache ports.RateCache) GetActiveRateQueryHandler {
	return GetActiveRateQueryHandler{db: db, cache: cache}
}

func (h GetActiveRateQueryHandler) Handle(ctx context.Context, query GetActiveRateQuery) (GetActiveRateQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetActiveRateQueryResponse{}, err
	}

	if h.cache != nil {
		if cached, err := h.cache.GetActive(ctx); err == nil {
			return rateResponse(cached), nil
		}
	}

	var rows []struct {
		ID                 uuid.UUID
		BaseRate           decimal.Decimal
		CostPerKm          decimal.Decimal
		CostPerKg          decimal.Decimal
		CostPerM3          decimal.Decimal
		InsuranceSurcharge decimal.Decimal
		FragileSurcharge   decimal.Decimal
		EffectiveFrom      time.Time
	}
	if err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			base_rate,
			cost_per_km,
			cost_per_kg,
			cost_per_m3,
			insurance_surcharge,
			fragile_surcharge,
			effective_from
		FROM rates
		WHERE effective_until IS NULL
		ORDER BY effective_from DESC
		LIMIT 1
	`).Scan(&rows).Error; err != nil {
		return GetActiveRateQueryResponse{}, err
	}

	if len(rows) == 0 {
		return GetActiveRateQueryResponse{Tariff: rate.DefaultTariff(), IsDefault: true}, nil
	}

	row := rows[0]
	id, err := kernel.UUIDFromGoogle(row.ID)
	if err != nil {
		return GetActiveRateQueryResponse{}, err
	}
	r, err := rate.RestoreRate(id, rate.Tariff{
		BaseRate:           row.BaseRate,
		CostPerKm:          row.CostPerKm,
		CostPerKg:          row.CostPerKg,
		CostPerM3:          row.CostPerM3,
		InsuranceSurcharge: row.InsuranceSurcharge,
		FragileSurcharge:   row.FragileSurcharge,
	}, row.EffectiveFrom, nil)
	if err != nil {
		return GetActiveRateQueryResponse{}, errs.NewValueIsInvalidErrorWithCause("rate", err)
	}
	return rateResponse(r), nil
}

func rateResponse(r *rate.Rate) GetActiveRateQueryResponse {
	id := r.ID()
	from := r.EffectiveFrom()
	return GetActiveRateQueryResponse{
		ID:            &id,
		Tariff:        r.Tariff(),
		EffectiveFrom: &from,
	}
}
