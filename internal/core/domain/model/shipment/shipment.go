package shipment

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

// PaymentFailedInstruction is appended to the instruction log when the gateway declines a payment.
const PaymentFailedInstruction = "Payment failed"

// ReassignedInstructionPrefix starts the instruction logged on every reassignment.
const ReassignedInstructionPrefix = "Reassigned: "

var (
	ErrShipmentIsNotConstructed = errs.NewValueIsRequiredError("shipment must be created via NewShipment")
	ErrAlreadyAssigned          = errors.New("shipment already has a deliverer")
	ErrNoDelivererAssigned      = errors.New("shipment has no deliverer assigned")
	ErrNotPaid                  = errs.NewValueIsInvalidErrorWithCause("payment", errors.New("shipment is not paid"))
	ErrAlreadyPaid              = errs.NewValueIsInvalidErrorWithCause("payment", errors.New("shipment is already paid"))
	ErrDistanceIsInvalid        = errs.NewValueIsInvalidErrorWithCause("distance", errors.New("must be a finite non-negative number"))
	ErrInstructionIsRequired    = errs.NewValueIsRequiredError("instruction")
	ErrReasonIsRequired         = errs.NewValueIsRequiredError("reason")
)

// Shipment is the aggregate root of the dispatch domain.
//
// The deliverer reference held here is the only record of who carries the
// parcel; deliverer workloads are read back from it. Invariants:
//   - Assigned, InTransit and Incident shipments reference a deliverer
//   - Pending, PendingReassignment and Cancelled shipments do not
//   - Delivered shipments keep the deliverer that completed them
//   - the instruction log only grows
type Shipment struct {
	id          kernel.UUID
	customerID  kernel.UUID
	origin      kernel.Address
	destination kernel.Address
	parcel      Parcel
	priority    Priority
	distance    float64
	cost        kernel.Money
	status      Status
	delivererID *kernel.UUID

	createdAt   time.Time
	paidAt      *time.Time
	assignedAt  *time.Time
	deliveredAt *time.Time

	instructions []string
	incidentIDs  []kernel.UUID

	guard guard.ConstructorGuard
}

// Snapshot is the full state of a shipment, used to persist and restore it.
type Snapshot struct {
	ID           kernel.UUID
	CustomerID   kernel.UUID
	Origin       kernel.Address
	Destination  kernel.Address
	Parcel       Parcel
	Priority     Priority
	Distance     float64
	Cost         kernel.Money
	Status       Status
	DelivererID  *kernel.UUID
	CreatedAt    time.Time
	PaidAt       *time.Time
	AssignedAt   *time.Time
	DeliveredAt  *time.Time
	Instructions []string
	IncidentIDs  []kernel.UUID
}

// NewShipment creates a Pending, unpaid shipment. Cost and distance are
// computed by the caller and stored as given; they are never recomputed.
//
// Parameters:
//   - id: unique identifier for the shipment
//   - customerID: the customer who placed it
//   - origin, destination: validated addresses; the destination zone decides dispatch
//   - parcel: weight, volume and handling flags
//   - priority: any known priority
//   - distance: kilometres between origin and destination, finite and non-negative
//   - cost: the quoted price
//   - createdAt: creation instant, stored in UTC
//
// Returns:
//   - *Shipment: the created shipment with no deliverer and an empty instruction log
//   - error: all validation errors joined
//
// Example:
//
//	cost, _ := kernel.NewMoney(decimal.NewFromInt(14100))
//	s, err := NewShipment(kernel.NewUUID(), customerID, origin, destination,
//	    parcel, PriorityStandard, 5, cost, time.Now())
//	if err != nil {
//	    // handle validation error
//	}
func NewShipment(
	id kernel.UUID,
	customerID kernel.UUID,
	origin kernel.Address,
	destination kernel.Address,
	parcel Parcel,
	priority Priority,
	distance float64,
	cost kernel.Money,
	createdAt time.Time,
) (*Shipment, error) {
	s := &Shipment{
		status:    Pending,
		createdAt: createdAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setCustomerID(customerID),
		s.setOrigin(origin),
		s.setDestination(destination),
		s.setParcel(parcel),
		s.setPriority(priority),
		s.setDistance(distance),
		s.setCost(cost),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreShipment rebuilds a shipment from persisted state, re-checking its invariants.
func RestoreShipment(snap Snapshot) (*Shipment, error) {
	s := &Shipment{
		createdAt:    snap.CreatedAt.UTC(),
		paidAt:       copyTime(snap.PaidAt),
		assignedAt:   copyTime(snap.AssignedAt),
		deliveredAt:  copyTime(snap.DeliveredAt),
		instructions: slices.Clone(snap.Instructions),
		incidentIDs:  slices.Clone(snap.IncidentIDs),
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(snap.ID),
		s.setCustomerID(snap.CustomerID),
		s.setOrigin(snap.Origin),
		s.setDestination(snap.Destination),
		s.setParcel(snap.Parcel),
		s.setPriority(snap.Priority),
		s.setDistance(snap.Distance),
		s.setCost(snap.Cost),
		s.setStatus(snap.Status, snap.DelivererID),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate ensures the Shipment was built by NewShipment or RestoreShipment.
//
// Returns:
//   - nil if the shipment is valid
//   - ErrShipmentIsNotConstructed for a nil or zero-value shipment
func (s *Shipment) Validate() error {
	if s == nil {
		return ErrShipmentIsNotConstructed
	}
	return s.guard.Validate(ErrShipmentIsNotConstructed)
}

// IsEqual compares two shipments by id. A nil other is never equal.
func (s *Shipment) IsEqual(other *Shipment) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// Snapshot copies the shipment's state out.
func (s *Shipment) Snapshot() Snapshot {
	return Snapshot{
		ID:           s.id,
		CustomerID:   s.customerID,
		Origin:       s.origin,
		Destination:  s.destination,
		Parcel:       s.parcel,
		Priority:     s.priority,
		Distance:     s.distance,
		Cost:         s.cost,
		Status:       s.status,
		DelivererID:  copyUUID(s.delivererID),
		CreatedAt:    s.createdAt,
		PaidAt:       copyTime(s.paidAt),
		AssignedAt:   copyTime(s.assignedAt),
		DeliveredAt:  copyTime(s.deliveredAt),
		Instructions: slices.Clone(s.instructions),
		IncidentIDs:  slices.Clone(s.incidentIDs),
	}
}

// ID returns the shipment's unique identifier.
func (s *Shipment) ID() kernel.UUID {
	return s.id
}

// CustomerID returns the customer who placed the shipment.
func (s *Shipment) CustomerID() kernel.UUID {
	return s.customerID
}

// Origin returns the pick-up address.
func (s *Shipment) Origin() kernel.Address {
	return s.origin
}

// Destination returns the drop-off address. Its zone decides who may carry the shipment.
func (s *Shipment) Destination() kernel.Address {
	return s.destination
}

// Parcel returns what is being shipped.
func (s *Shipment) Parcel() Parcel {
	return s.parcel
}

// Priority returns the service level.
func (s *Shipment) Priority() Priority {
	return s.priority
}

// Distance returns the kilometres between origin and destination.
func (s *Shipment) Distance() float64 {
	return s.distance
}

// Cost returns the price quoted at creation.
func (s *Shipment) Cost() kernel.Money {
	return s.cost
}

// Status returns the current lifecycle status.
func (s *Shipment) Status() Status {
	return s.status
}

// Deliverer returns the assigned deliverer, or nil.
func (s *Shipment) Deliverer() *kernel.UUID {
	return copyUUID(s.delivererID)
}

// CreatedAt returns when the shipment was created, in UTC.
func (s *Shipment) CreatedAt() time.Time {
	return s.createdAt
}

// PaidAt returns when payment was confirmed, or nil if it was not.
func (s *Shipment) PaidAt() *time.Time {
	return copyTime(s.paidAt)
}

// AssignedAt returns when the current deliverer was assigned.
// Returns nil while no deliverer holds the shipment.
func (s *Shipment) AssignedAt() *time.Time {
	return copyTime(s.assignedAt)
}

// DeliveredAt returns when the shipment was delivered, or nil.
func (s *Shipment) DeliveredAt() *time.Time {
	return copyTime(s.deliveredAt)
}

// IsPaid reports whether a payment was confirmed.
func (s *Shipment) IsPaid() bool {
	return s.paidAt != nil
}

// Instructions returns a copy of the instruction log, oldest first.
func (s *Shipment) Instructions() []string {
	return slices.Clone(s.instructions)
}

// IncidentIDs returns a copy of the incidents reported against the shipment.
func (s *Shipment) IncidentIDs() []kernel.UUID {
	return slices.Clone(s.incidentIDs)
}

// IsAwaitingDeliverer reports whether dispatch should try to find a deliverer for the shipment.
func (s *Shipment) IsAwaitingDeliverer() bool {
	return s.IsPaid() && s.delivererID == nil && (s.status == Pending || s.status == PendingReassignment)
}

// MarkPaid records a successful payment. Only Pending shipments are paid.
func (s *Shipment) MarkPaid(now time.Time) error {
	if s.status.IsTerminal() {
		return s.terminalError("PAID")
	}
	if s.paidAt != nil {
		return ErrAlreadyPaid
	}
	if s.status != Pending {
		return errs.NewValueIsInvalidErrorWithCause("payment", fmt.Errorf("%s shipment cannot be paid", s.status))
	}

	paidAt := now.UTC()
	s.paidAt = &paidAt
	return nil
}

// RecordPaymentFailure logs a declined payment. The shipment stays Pending.
func (s *Shipment) RecordPaymentFailure() error {
	return s.AppendInstruction(PaymentFailedInstruction)
}

// Assign hands the shipment to a deliverer.
//
// This method enforces the following business rules:
//   - The deliverer id must be valid
//   - The shipment must be paid and not already held by a deliverer
//   - Only Pending and PendingReassignment shipments can be assigned
//
// Parameters:
//   - delivererID: the deliverer taking the shipment
//   - now: the assignment instant
//
// Returns:
//   - nil on successful assignment
//   - ErrNotPaid, ErrAlreadyAssigned, ErrInvalidTransition or ErrTerminalShipment otherwise
func (s *Shipment) Assign(delivererID kernel.UUID, now time.Time) error {
	if err := delivererID.Validate(); err != nil {
		return err
	}
	if s.status.IsTerminal() {
		return s.terminalError(Assigned.String())
	}
	if s.delivererID != nil {
		return ErrAlreadyAssigned
	}
	if !s.IsPaid() {
		return ErrNotPaid
	}

	next, err := s.status.TransitionTo(Assigned)
	if err != nil {
		return err
	}

	assignedAt := now.UTC()
	s.status = next
	s.delivererID = &delivererID
	s.assignedAt = &assignedAt
	return nil
}

// Reassign assigns a new deliverer to a shipment waiting for one and logs the reason.
func (s *Shipment) Reassign(delivererID kernel.UUID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonIsRequired
	}
	if err := s.Assign(delivererID, now); err != nil {
		return err
	}
	s.instructions = append(s.instructions, ReassignedInstructionPrefix+reason)
	return nil
}

// StartTransit records the pick-up. Only an Assigned shipment can start transit;
// any other status returns ErrInvalidTransition.
func (s *Shipment) StartTransit() error {
	next, err := s.status.TransitionTo(InTransit)
	if err != nil {
		return err
	}
	s.status = next
	return nil
}

// Deliver completes the shipment. The deliverer reference is kept.
func (s *Shipment) Deliver(now time.Time) error {
	if s.status.IsTerminal() {
		return s.terminalError(Delivered.String())
	}
	if s.delivererID == nil {
		return ErrNoDelivererAssigned
	}

	next, err := s.status.TransitionTo(Delivered)
	if err != nil {
		return err
	}

	deliveredAt := now.UTC()
	s.status = next
	s.deliveredAt = &deliveredAt
	return nil
}

// Cancel cancels the shipment and returns the deliverer it was released from, if any.
func (s *Shipment) Cancel() (*kernel.UUID, error) {
	next, err := s.status.TransitionTo(Cancelled)
	if err != nil {
		return nil, err
	}

	released := s.delivererID
	s.status = next
	s.delivererID = nil
	return released, nil
}

// AttachIncident links a reported incident to the shipment.
func (s *Shipment) AttachIncident(incidentID kernel.UUID) error {
	if err := incidentID.Validate(); err != nil {
		return err
	}
	if s.status.IsTerminal() {
		return s.terminalError(Incident.String())
	}
	s.incidentIDs = append(s.incidentIDs, incidentID)
	return nil
}

// ReleaseForReassignment takes the shipment away from its deliverer so it can
// be dispatched again. Assigned and InTransit shipments pass through Incident
// on the way to PendingReassignment. The released deliverer is returned; it is
// nil when the shipment was already waiting for one.
func (s *Shipment) ReleaseForReassignment() (*kernel.UUID, error) {
	switch s.status {
	case Pending, PendingReassignment:
		return nil, nil
	case Assigned, InTransit:
		next, err := s.status.TransitionTo(Incident)
		if err != nil {
			return nil, err
		}
		s.status = next
	case Incident:
	default:
		if _, err := s.status.TransitionTo(PendingReassignment); err != nil {
			return nil, err
		}
	}

	next, err := s.status.TransitionTo(PendingReassignment)
	if err != nil {
		return nil, err
	}

	released := s.delivererID
	s.status = next
	s.delivererID = nil
	s.assignedAt = nil
	return released, nil
}

// Escalate applies an incident that requires a new deliverer. Only shipments
// that have been picked up by a deliverer, or are already waiting for a new
// one, can escalate.
//
// Returns:
//   - *kernel.UUID: the deliverer the shipment was taken from, nil when it
//     was already pending reassignment.
//   - error: ErrInvalidTransition for a Pending shipment, ErrTerminalShipment
//     for a finished one.
func (s *Shipment) Escalate() (*kernel.UUID, error) {
	if s.status == Pending {
		_, err := s.status.TransitionTo(Incident)
		return nil, err
	}
	return s.ReleaseForReassignment()
}

// AppendInstruction adds an entry to the instruction log. Entries are never removed.
func (s *Shipment) AppendInstruction(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrInstructionIsRequired
	}
	if s.status.IsTerminal() {
		return s.terminalError(s.status.String())
	}
	s.instructions = append(s.instructions, text)
	return nil
}

func (s *Shipment) terminalError(to string) error {
	return errs.NewStateTransitionIsInvalidErrorWithCause("shipment", s.status.String(), to, ErrTerminalShipment)
}

func (s *Shipment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Shipment) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer", err)
	}
	s.customerID = customerID
	return nil
}

func (s *Shipment) setOrigin(origin kernel.Address) error {
	if err := origin.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("origin", err)
	}
	s.origin = origin
	return nil
}

func (s *Shipment) setDestination(destination kernel.Address) error {
	if err := destination.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("destination", err)
	}
	s.destination = destination
	return nil
}

func (s *Shipment) setParcel(parcel Parcel) error {
	if err := parcel.Validate(); err != nil {
		return err
	}
	s.parcel = parcel
	return nil
}

func (s *Shipment) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	s.priority = priority
	return nil
}

func (s *Shipment) setDistance(distance float64) error {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return ErrDistanceIsInvalid
	}
	s.distance = distance
	return nil
}

func (s *Shipment) setCost(cost kernel.Money) error {
	if err := cost.Validate(); err != nil {
		return err
	}
	s.cost = cost
	return nil
}

func (s *Shipment) setStatus(status Status, delivererID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if delivererID != nil {
		if err := delivererID.Validate(); err != nil {
			return err
		}
	}
	if err := status.ValidateCanHaveDeliverer(delivererID != nil); err != nil {
		return err
	}
	s.status = status
	s.delivererID = copyUUID(delivererID)
	return nil
}

func copyUUID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := t.UTC()
	return &c
}
