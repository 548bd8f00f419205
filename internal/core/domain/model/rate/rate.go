package rate

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

var (
	ErrRateIsNotConstructed = errs.NewValueIsRequiredError("rate must be created via NewRate")
	ErrRateAlreadyRetired   = errors.New("rate is already retired")
)

// Tariff holds the coefficients a shipment's cost is computed from. Amounts
// are in the operating currency; surcharges are fractions of the base cost.
type Tariff struct {
	BaseRate           decimal.Decimal
	CostPerKm          decimal.Decimal
	CostPerKg          decimal.Decimal
	CostPerM3          decimal.Decimal
	InsuranceSurcharge decimal.Decimal
	FragileSurcharge   decimal.Decimal
}

// DefaultTariff is used until a rate has been activated.
func DefaultTariff() Tariff {
	return Tariff{
		BaseRate:           decimal.NewFromInt(5000),
		CostPerKm:          decimal.NewFromInt(1000),
		CostPerKg:          decimal.NewFromInt(2000),
		CostPerM3:          decimal.NewFromInt(10000),
		InsuranceSurcharge: decimal.RequireFromString("0.10"),
		FragileSurcharge:   decimal.RequireFromString("0.15"),
	}
}

// Rate is one version of the tariff. At most one rate is active; older ones
// keep the instant they were replaced.
type Rate struct {
	id             kernel.UUID
	tariff         Tariff
	effectiveFrom  time.Time
	effectiveUntil *time.Time
	guard          guard.ConstructorGuard
}

// NewRate creates an active rate. effectiveFrom is stored in UTC.
// Returns the tariff's validation error when a coefficient is negative.
func NewRate(id kernel.UUID, tariff Tariff, effectiveFrom time.Time) (*Rate, error) {
	r := &Rate{
		effectiveFrom: effectiveFrom.UTC(),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(r.setID(id), r.setTariff(tariff)); err != nil {
		return nil, err
	}
	return r, nil
}

// Default returns an unsaved active rate carrying DefaultTariff.
func Default(effectiveFrom time.Time) *Rate {
	r, err := NewRate(kernel.NewUUID(), DefaultTariff(), effectiveFrom)
	if err != nil {
		panic(fmt.Sprintf("default tariff is invalid: %v", err))
	}
	return r
}

// RestoreRate rebuilds a rate from storage. A nil effectiveUntil means the rate
// is still active.
func RestoreRate(id kernel.UUID, tariff Tariff, effectiveFrom time.Time, effectiveUntil *time.Time) (*Rate, error) {
	r, err := NewRate(id, tariff, effectiveFrom)
	if err != nil {
		return nil, err
	}
	if effectiveUntil != nil {
		until := effectiveUntil.UTC()
		r.effectiveUntil = &until
	}
	return r, nil
}

// Validate returns ErrRateIsNotConstructed unless the rate came from NewRate.
func (r *Rate) Validate() error {
	if r == nil {
		return ErrRateIsNotConstructed
	}
	return r.guard.Validate(ErrRateIsNotConstructed)
}

// ID returns the rate's unique identifier.
func (r *Rate) ID() kernel.UUID {
	return r.id
}

// Tariff returns the pricing coefficients.
func (r *Rate) Tariff() Tariff {
	return r.tariff
}

// EffectiveFrom returns when the rate was activated.
func (r *Rate) EffectiveFrom() time.Time {
	return r.effectiveFrom
}

// EffectiveUntil returns when the rate was retired, or nil while it is active.
func (r *Rate) EffectiveUntil() *time.Time {
	if r.effectiveUntil == nil {
		return nil
	}
	t := *r.effectiveUntil
	return &t
}

// IsActive reports whether the rate has not been retired.
func (r *Rate) IsActive() bool {
	return r.effectiveUntil == nil
}

// Retire closes the rate's validity at now.
func (r *Rate) Retire(now time.Time) error {
	if !r.IsActive() {
		return ErrRateAlreadyRetired
	}
	until := now.UTC()
	r.effectiveUntil = &until
	return nil
}

func (r *Rate) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Rate) setTariff(t Tariff) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.tariff = t
	return nil
}

// Validate rejects negative coefficients.
func (t Tariff) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"base rate", t.BaseRate},
		{"cost per km", t.CostPerKm},
		{"cost per kg", t.CostPerKg},
		{"cost per m3", t.CostPerM3},
		{"insurance surcharge", t.InsuranceSurcharge},
		{"fragile surcharge", t.FragileSurcharge},
	}

	var errList []error
	for _, f := range fields {
		if f.value.IsNegative() {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(f.name, fmt.Errorf("%s is negative", f.value)))
		}
	}
	return errors.Join(errList...)
}
