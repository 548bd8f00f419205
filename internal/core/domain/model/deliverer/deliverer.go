package deliverer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

// MaxConcurrentShipments is how many shipments one deliverer carries at a time.
const MaxConcurrentShipments = 3

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrDelivererIsNotConstructed = errs.NewValueIsRequiredError("deliverer must be created via NewDeliverer")
	ErrDocumentIsRequired        = errs.NewValueIsRequiredError("document")
	ErrNameIsRequired            = errs.NewValueIsRequiredError("name")
	ErrPhoneIsRequired           = errs.NewValueIsRequiredError("phone")
	ErrDelivererUnavailable      = errors.New("deliverer cannot take more shipments")
	ErrInvalidRating             = errors.New("rating must be between 1 and 5")
	ErrShipmentNotCarried        = errors.New("deliverer is not carrying the shipment")
)

// Deliverer is a courier serving one zone.
//
// activeShipments is a read view: it is filled from the shipments that
// reference this deliverer and is never persisted on its own. Methods that
// change it keep the in-memory view coherent with the change being made to
// the shipment in the same transaction.
type Deliverer struct {
	id              kernel.UUID
	document        string
	name            string
	phone           string
	zone            string
	location        kernel.Location
	status          Status
	activeShipments []kernel.UUID
	totalDeliveries int
	averageRating   float64
	guard           guard.ConstructorGuard
}

// Snapshot is the full state of a deliverer, used to persist and restore it.
type Snapshot struct {
	ID              kernel.UUID
	Document        string
	Name            string
	Phone           string
	Zone            string
	Location        kernel.Location
	Status          Status
	ActiveShipments []kernel.UUID
	TotalDeliveries int
	AverageRating   float64
}

// NewDeliverer registers an Available deliverer with no history.
//
// Parameters:
//   - id: unique identifier
//   - document, name, phone: identity and contact; none may be blank
//   - zone: the only zone the deliverer is dispatched in
//   - location: current position
//
// Returns:
//   - *Deliverer: the deliverer with zero load and no rating
//   - error: all validation errors joined
func NewDeliverer(
	id kernel.UUID,
	document string,
	name string,
	phone string,
	zone string,
	location kernel.Location,
) (*Deliverer, error) {
	d := &Deliverer{
		status: Available,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setDocument(document),
		d.setName(name),
		d.setPhone(phone),
		d.setZone(zone),
		d.setLocation(location),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDeliverer rebuilds a deliverer from storage. The snapshot's status is
// taken as stored, but its history must be consistent: a rating without
// deliveries is rejected.
func RestoreDeliverer(snap Snapshot) (*Deliverer, error) {
	d := &Deliverer{
		activeShipments: slices.Clone(snap.ActiveShipments),
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(snap.ID),
		d.setDocument(snap.Document),
		d.setName(snap.Name),
		d.setPhone(snap.Phone),
		d.setZone(snap.Zone),
		d.setLocation(snap.Location),
		d.setStatus(snap.Status),
		d.setHistory(snap.TotalDeliveries, snap.AverageRating),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate ensures the Deliverer was created via NewDeliverer or RestoreDeliverer.
// Returns ErrDelivererIsNotConstructed otherwise.
func (d *Deliverer) Validate() error {
	if d == nil {
		return ErrDelivererIsNotConstructed
	}
	return d.guard.Validate(ErrDelivererIsNotConstructed)
}

// IsEqual compares two deliverers by id.
func (d *Deliverer) IsEqual(other *Deliverer) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// Snapshot copies the deliverer's state out.
func (d *Deliverer) Snapshot() Snapshot {
	return Snapshot{
		ID:              d.id,
		Document:        d.document,
		Name:            d.name,
		Phone:           d.phone,
		Zone:            d.zone,
		Location:        d.location,
		Status:          d.status,
		ActiveShipments: slices.Clone(d.activeShipments),
		TotalDeliveries: d.totalDeliveries,
		AverageRating:   d.averageRating,
	}
}

// ID returns the deliverer's unique identifier.
func (d *Deliverer) ID() kernel.UUID {
	return d.id
}

// Document returns the identity document number, unique across the fleet.
func (d *Deliverer) Document() string {
	return d.document
}

// Name returns the deliverer's name.
func (d *Deliverer) Name() string {
	return d.name
}

// Phone returns the contact number.
func (d *Deliverer) Phone() string {
	return d.phone
}

// Zone returns the zone the deliverer works in, as registered.
func (d *Deliverer) Zone() string {
	return d.zone
}

// Location returns the last known position.
func (d *Deliverer) Location() kernel.Location {
	return d.location
}

// Status returns the current availability.
func (d *Deliverer) Status() Status {
	return d.status
}

// ActiveShipments returns a copy of the shipments currently carried.
func (d *Deliverer) ActiveShipments() []kernel.UUID {
	return slices.Clone(d.activeShipments)
}

// Load is the number of shipments currently carried.
func (d *Deliverer) Load() int {
	return len(d.activeShipments)
}

// TotalDeliveries returns how many shipments the deliverer has completed.
func (d *Deliverer) TotalDeliveries() int {
	return d.totalDeliveries
}

// AverageRating returns the running mean of customer ratings.
// Returns 0 before the first rated delivery.
func (d *Deliverer) AverageRating() float64 {
	return d.averageRating
}

// MatchesZone compares the deliverer's zone with zone, ignoring case.
func (d *Deliverer) MatchesZone(zone string) bool {
	return kernel.SameZone(d.zone, zone)
}

// CanAcceptShipment reports whether the deliverer may be given another shipment.
func (d *Deliverer) CanAcceptShipment() bool {
	switch d.status {
	case Available, Active:
		return d.Load() < MaxConcurrentShipments
	default:
		return false
	}
}

// IsCarrying reports whether shipmentID is part of the current load.
func (d *Deliverer) IsCarrying(shipmentID kernel.UUID) bool {
	return slices.ContainsFunc(d.activeShipments, shipmentID.IsEqual)
}

// TakeShipment adds a shipment to the deliverer's load. The status becomes
// Busy at capacity and Active below it.
func (d *Deliverer) TakeShipment(shipmentID kernel.UUID) error {
	if err := shipmentID.Validate(); err != nil {
		return err
	}
	if !d.CanAcceptShipment() || d.IsCarrying(shipmentID) {
		return ErrDelivererUnavailable
	}

	d.activeShipments = append(d.activeShipments, shipmentID)
	d.refreshWorkloadStatus()
	return nil
}

// ReleaseShipment removes a cancelled shipment. The deliverer goes back to
// Available only when nothing else is being carried.
func (d *Deliverer) ReleaseShipment(shipmentID kernel.UUID) error {
	if err := d.removeShipment(shipmentID); err != nil {
		return err
	}
	if d.status.IsInService() {
		d.refreshWorkloadStatus()
	}
	return nil
}

// Free takes a shipment away after an incident or a reassignment. The
// deliverer is made Available regardless of any other load.
func (d *Deliverer) Free(shipmentID kernel.UUID) {
	d.activeShipments = slices.DeleteFunc(d.activeShipments, shipmentID.IsEqual)
	d.status = Available
}

// RecordDelivery moves a shipment to history and folds the customer's rating
// into the average. An out of range rating changes nothing.
func (d *Deliverer) RecordDelivery(shipmentID kernel.UUID, rating int) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	if err := d.removeShipment(shipmentID); err != nil {
		return err
	}

	count := float64(d.totalDeliveries)
	d.averageRating = (d.averageRating*count + float64(rating)) / (count + 1)
	d.totalDeliveries++

	if d.status.IsInService() {
		d.refreshWorkloadStatus()
	}
	return nil
}

// ChangeStatus applies a status picked by the deliverer. Choosing Available
// while carrying shipments resolves to the workload status instead.
func (d *Deliverer) ChangeStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if !status.IsSelectable() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is derived from workload and cannot be set", status))
	}

	d.status = status
	if status == Available {
		d.refreshWorkloadStatus()
	}
	return nil
}

// ValidateRating checks a customer rating before anything is mutated.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	return nil
}

func (d *Deliverer) refreshWorkloadStatus() {
	switch load := d.Load(); {
	case load == 0:
		d.status = Available
	case load >= MaxConcurrentShipments:
		d.status = Busy
	default:
		d.status = Active
	}
}

func (d *Deliverer) removeShipment(shipmentID kernel.UUID) error {
	if !d.IsCarrying(shipmentID) {
		return ErrShipmentNotCarried
	}
	d.activeShipments = slices.DeleteFunc(d.activeShipments, shipmentID.IsEqual)
	return nil
}

func (d *Deliverer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Deliverer) setDocument(document string) error {
	document = strings.TrimSpace(document)
	if document == "" {
		return ErrDocumentIsRequired
	}
	d.document = document
	return nil
}

func (d *Deliverer) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Deliverer) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneIsRequired
	}
	d.phone = phone
	return nil
}

func (d *Deliverer) setZone(zone string) error {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return kernel.ErrZoneIsRequired
	}
	d.zone = zone
	return nil
}

func (d *Deliverer) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.location = location
	return nil
}

func (d *Deliverer) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	d.status = status
	return nil
}

func (d *Deliverer) setHistory(total int, average float64) error {
	if total < 0 {
		return errs.NewValueIsInvalidErrorWithCause("total deliveries", fmt.Errorf("%d is negative", total))
	}
	if total == 0 && average != 0 {
		return errs.NewValueIsInvalidErrorWithCause("average rating", errors.New("set without deliveries"))
	}
	if total > 0 && (average < MinRating || average > MaxRating) {
		return errs.NewValueIsOutOfRangeError("average rating", average, MinRating, MaxRating)
	}
	d.totalDeliveries = total
	d.averageRating = average
	return nil
}
