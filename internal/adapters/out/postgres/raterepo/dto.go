package raterepo

import (
	"time"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateDTO is one tariff version. The active rate is the row whose
// effective_until is NULL.
type RateDTO struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BaseRate           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CostPerKm          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CostPerKg          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CostPerM3          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	InsuranceSurcharge decimal.Decimal `gorm:"type:numeric(6,4);not null"`
	FragileSurcharge   decimal.Decimal `gorm:"type:numeric(6,4);not null"`
	EffectiveFrom      time.Time       `gorm:"not null;index"`
	EffectiveUntil     *time.Time      `gorm:"index"`
}

func (RateDTO) TableName() string {
	return "rates"
}

func fromDomain(r *rate.Rate) RateDTO {
	t := r.Tariff()
	return RateDTO{
		ID:                 r.ID().Google(),
		BaseRate:           t.BaseRate,
		CostPerKm:          t.CostPerKm,
		CostPerKg:          t.CostPerKg,
		CostPerM3:          t.CostPerM3,
		InsuranceSurcharge: t.InsuranceSurcharge,
		FragileSurcharge:   t.FragileSurcharge,
		EffectiveFrom:      r.EffectiveFrom(),
		EffectiveUntil:     r.EffectiveUntil(),
	}
}

func toDomain(dto RateDTO) (*rate.Rate, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	return rate.RestoreRate(id, rate.Tariff{
		BaseRate:           dto.BaseRate,
		CostPerKm:          dto.CostPerKm,
		CostPerKg:          dto.CostPerKg,
		CostPerM3:          dto.CostPerM3,
		InsuranceSurcharge: dto.InsuranceSurcharge,
		FragileSurcharge:   dto.FragileSurcharge,
	}, dto.EffectiveFrom, dto.EffectiveUntil)
}
