package kernel

import (
	"errors"
	"fmt"
	"math"

	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is a point on the simplified delivery grid used for routing
// estimates. Coordinates are arbitrary finite floats.
type Location struct { //nolint:recvcheck // setters need a pointer receiver
	x     float64
	y     float64
	guard guard.ConstructorGuard
}

// NewLocation validates and creates a grid point.
func NewLocation(x float64, y float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setX(x), loc.setY(y)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) X() float64 {
	return l.x
}

func (l Location) Y() float64 {
	return l.y
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%g,%g)", l.x, l.y)
}

func (l Location) IsEqual(other Location) bool {
	return l.x == other.x && l.y == other.y
}

// Distance returns the straight-line (Euclidean) distance between two grid points.
func (l Location) Distance(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return math.Hypot(other.x-l.x, other.y-l.y), nil
}

func (l *Location) setX(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return errs.NewValueIsInvalidErrorWithCause("x", fmt.Errorf("%v is not a finite coordinate", x))
	}
	l.x = x
	return nil
}

func (l *Location) setY(y float64) error {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return errs.NewValueIsInvalidErrorWithCause("y", fmt.Errorf("%v is not a finite coordinate", y))
	}
	l.y = y
	return nil
}
