package shipment

import (
	"errors"
	"fmt"
	"math"

	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

var ErrParcelIsNotConstructed = errs.NewValueIsRequiredError("parcel must be created via NewParcel")

// Parcel describes what is being carried. Weight is in kilograms, volume in cubic metres.
type Parcel struct {
	weight  float64
	volume  float64
	fragile bool
	insured bool
	guard   guard.ConstructorGuard
}

func NewParcel(weight float64, volume float64, fragile bool, insured bool) (Parcel, error) {
	p := Parcel{
		fragile: fragile,
		insured: insured,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setWeight(weight), p.setVolume(volume)); err != nil {
		return Parcel{}, err
	}
	return p, nil
}

func (p Parcel) Validate() error {
	return p.guard.Validate(ErrParcelIsNotConstructed)
}

func (p Parcel) Weight() float64 {
	return p.weight
}

func (p Parcel) Volume() float64 {
	return p.volume
}

func (p Parcel) Fragile() bool {
	return p.fragile
}

func (p Parcel) Insured() bool {
	return p.insured
}

func (p *Parcel) setWeight(weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is not greater than 0", weight))
	}
	p.weight = weight
	return nil
}

func (p *Parcel) setVolume(volume float64) error {
	if math.IsNaN(volume) || math.IsInf(volume, 0) || volume < 0 {
		return errs.NewValueIsInvalidErrorWithCause("volume", fmt.Errorf("%v is negative", volume))
	}
	p.volume = volume
	return nil
}
