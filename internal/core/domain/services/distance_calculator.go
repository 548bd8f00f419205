package services

import (
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"
)

// ErrGeoPointIsRequired is returned by HaversineDistance when an address was not geocoded.
var ErrGeoPointIsRequired = errs.NewValueIsRequiredError("gps coordinates")

// DistanceCalculator measures how far a parcel travels between two addresses.
type DistanceCalculator interface {
	Distance(from kernel.Address, to kernel.Address) (float64, error)
}

// EuclideanDistance measures on the city grid.
type EuclideanDistance struct{}

func (EuclideanDistance) Distance(from kernel.Address, to kernel.Address) (float64, error) {
	if err := validateAddresses(from, to); err != nil {
		return 0, err
	}
	return from.Location().Distance(to.Location())
}

// HaversineDistance measures great-circle kilometres between geocoded addresses.
type HaversineDistance struct{}

func (HaversineDistance) Distance(from kernel.Address, to kernel.Address) (float64, error) {
	if err := validateAddresses(from, to); err != nil {
		return 0, err
	}

	a, okA := from.GeoPoint()
	b, okB := to.GeoPoint()
	if !okA || !okB {
		return 0, ErrGeoPointIsRequired
	}
	return a.Distance(b)
}

// AdaptiveDistance uses the sphere when both ends are geocoded and the grid otherwise.
type AdaptiveDistance struct {
	grid   EuclideanDistance
	sphere HaversineDistance
}

func NewDistanceCalculator() AdaptiveDistance {
	return AdaptiveDistance{}
}

func (c AdaptiveDistance) Distance(from kernel.Address, to kernel.Address) (float64, error) {
	_, okA := from.GeoPoint()
	_, okB := to.GeoPoint()
	if okA && okB {
		return c.sphere.Distance(from, to)
	}
	return c.grid.Distance(from, to)
}

func validateAddresses(from kernel.Address, to kernel.Address) error {
	if err := from.Validate(); err != nil {
		return err
	}
	return to.Validate()
}
