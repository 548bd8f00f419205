package kernel

import (
	"errors"
	"strings"

	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

var (
	ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("address must be created via NewAddress")
	ErrStreetIsRequired        = errs.NewValueIsRequiredError("street")
	ErrZoneIsRequired          = errs.NewValueIsRequiredError("zone")
)

// Address is a pickup or drop-off point.
//
// Zone is the tag deliverers are matched on; it is compared case-insensitively.
// Location is always present. GeoPoint is present only when the address was
// geocoded, in which case distances can be computed on the sphere.
type Address struct {
	street   string
	city     string
	zone     string
	location Location
	geo      *GeoPoint
	guard    guard.ConstructorGuard
}

func NewAddress(street string, city string, zone string, location Location, geo *GeoPoint) (Address, error) {
	a := Address{
		city:  strings.TrimSpace(city),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setStreet(street),
		a.setZone(zone),
		a.setLocation(location),
		a.setGeo(geo),
	); err != nil {
		return Address{}, err
	}

	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Street() string {
	return a.street
}

func (a Address) City() string {
	return a.city
}

func (a Address) Zone() string {
	return a.zone
}

func (a Address) Location() Location {
	return a.location
}

// GeoPoint returns the geocoded position and whether one is set.
func (a Address) GeoPoint() (GeoPoint, bool) {
	if a.geo == nil {
		return GeoPoint{}, false
	}
	return *a.geo, true
}

// InZone reports whether the address belongs to zone, ignoring case and surrounding blanks.
func (a Address) InZone(zone string) bool {
	return SameZone(a.zone, zone)
}

// SameZone compares two zone tags the way dispatch does.
func SameZone(a string, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ZoneKey is the canonical form of a zone tag used for locks and lookups.
func ZoneKey(zone string) string {
	return strings.ToLower(strings.TrimSpace(zone))
}

func (a *Address) setStreet(street string) error {
	street = strings.TrimSpace(street)
	if street == "" {
		return ErrStreetIsRequired
	}
	a.street = street
	return nil
}

func (a *Address) setZone(zone string) error {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return ErrZoneIsRequired
	}
	a.zone = zone
	return nil
}

func (a *Address) setLocation(location Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	a.location = location
	return nil
}

func (a *Address) setGeo(geo *GeoPoint) error {
	if geo == nil {
		return nil
	}
	if err := geo.Validate(); err != nil {
		return err
	}
	p := *geo
	a.geo = &p
	return nil
}
