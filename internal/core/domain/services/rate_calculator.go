package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"
)

// QuoteRequest carries everything that affects a shipment's price.
type QuoteRequest struct {
	Weight   float64
	Volume   float64
	Distance float64
	Insured  bool
	Fragile  bool
	Priority shipment.Priority
}

// RateCalculator prices shipments against a Rate.
//
//	base  = baseRate + weight·costPerKg + volume·costPerM3 + distance·costPerKm
//	total = (base + base·insurance? + base·fragile?) · priorityMultiplier
//
// Totals are rounded to cents at the end.
type RateCalculator struct{}

func NewRateCalculator() RateCalculator {
	return RateCalculator{}
}

// BaseRate prices weight, volume and distance. It never decreases as any input grows.
func (RateCalculator) BaseRate(r *rate.Rate, weight float64, volume float64, distance float64) (decimal.Decimal, error) {
	if err := r.Validate(); err != nil {
		return decimal.Zero, err
	}
	if err := validateQuantity("weight", weight); err != nil {
		return decimal.Zero, err
	}
	if err := validateQuantity("volume", volume); err != nil {
		return decimal.Zero, err
	}
	if err := validateQuantity("distance", distance); err != nil {
		return decimal.Zero, err
	}

	t := r.Tariff()
	return t.BaseRate.
		Add(decimal.NewFromFloat(weight).Mul(t.CostPerKg)).
		Add(decimal.NewFromFloat(volume).Mul(t.CostPerM3)).
		Add(decimal.NewFromFloat(distance).Mul(t.CostPerKm)), nil
}

// Surcharges adds the insurance and fragile fractions of base, then applies the
// priority multiplier.
func (RateCalculator) Surcharges(
	r *rate.Rate,
	base decimal.Decimal,
	insured bool,
	fragile bool,
	multiplier decimal.Decimal,
) (decimal.Decimal, error) {
	if err := r.Validate(); err != nil {
		return decimal.Zero, err
	}
	if base.IsNegative() {
		return decimal.Zero, errs.NewValueIsInvalidErrorWithCause("base", fmt.Errorf("%s is negative", base))
	}
	if multiplier.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, errs.NewValueIsInvalidErrorWithCause("multiplier", fmt.Errorf("%s is below 1", multiplier))
	}

	t := r.Tariff()
	total := base
	if insured {
		total = total.Add(base.Mul(t.InsuranceSurcharge))
	}
	if fragile {
		total = total.Add(base.Mul(t.FragileSurcharge))
	}
	return total.Mul(multiplier), nil
}

// Quote returns the final price of a shipment.
func (c RateCalculator) Quote(r *rate.Rate, req QuoteRequest) (kernel.Money, error) {
	if err := req.Priority.Validate(); err != nil {
		return kernel.Money{}, err
	}

	base, err := c.BaseRate(r, req.Weight, req.Volume, req.Distance)
	if err != nil {
		return kernel.Money{}, err
	}

	total, err := c.Surcharges(r, base, req.Insured, req.Fragile, req.Priority.Multiplier())
	if err != nil {
		return kernel.Money{}, err
	}

	return kernel.NewMoney(total.Round(2))
}

func validateQuantity(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%v is not a non-negative number", v))
	}
	return nil
}
