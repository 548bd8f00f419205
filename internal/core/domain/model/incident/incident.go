package incident

import (
	"errors"
	"strings"
	"time"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

var (
	ErrIncidentIsNotConstructed = errs.NewValueIsRequiredError("incident must be created via NewIncident")
	ErrDescriptionIsRequired    = errs.NewValueIsRequiredError("description")
	ErrSolutionIsRequired       = errs.NewValueIsRequiredError("solution")
	ErrIncidentAlreadyResolved  = errors.New("incident is already resolved")
)

// Incident is a problem reported against a shipment. It is resolved at most once.
type Incident struct {
	id          kernel.UUID
	shipmentID  kernel.UUID
	delivererID *kernel.UUID
	kind        Type
	description string
	reportedAt  time.Time
	resolution  string
	resolvedAt  *time.Time
	guard       guard.ConstructorGuard
}

// NewIncident opens an incident. delivererID is whoever carried the shipment
// when it was reported, or nil.
func NewIncident(
	id kernel.UUID,
	shipmentID kernel.UUID,
	delivererID *kernel.UUID,
	kind Type,
	description string,
	reportedAt time.Time,
) (*Incident, error) {
	i := &Incident{
		reportedAt: reportedAt.UTC(),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		i.setID(id),
		i.setShipmentID(shipmentID),
		i.setDelivererID(delivererID),
		i.setType(kind),
		i.setDescription(description),
	); err != nil {
		return nil, err
	}

	return i, nil
}

// RestoreIncident rebuilds an incident from storage. resolvedAt is nil for open incidents.
func RestoreIncident(
	id kernel.UUID,
	shipmentID kernel.UUID,
	delivererID *kernel.UUID,
	kind Type,
	description string,
	reportedAt time.Time,
	resolution string,
	resolvedAt *time.Time,
) (*Incident, error) {
	i, err := NewIncident(id, shipmentID, delivererID, kind, description, reportedAt)
	if err != nil {
		return nil, err
	}
	if resolvedAt != nil {
		if err := i.Resolve(resolution, *resolvedAt); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Validate returns ErrIncidentIsNotConstructed unless the incident came from NewIncident.
func (i *Incident) Validate() error {
	if i == nil {
		return ErrIncidentIsNotConstructed
	}
	return i.guard.Validate(ErrIncidentIsNotConstructed)
}

// ID returns the incident's unique identifier.
func (i *Incident) ID() kernel.UUID {
	return i.id
}

// ShipmentID returns the affected shipment.
func (i *Incident) ShipmentID() kernel.UUID {
	return i.shipmentID
}

// Deliverer returns who carried the shipment when the incident was reported.
func (i *Incident) Deliverer() *kernel.UUID {
	if i.delivererID == nil {
		return nil
	}
	id := *i.delivererID
	return &id
}

// Type returns what happened.
func (i *Incident) Type() Type {
	return i.kind
}

// Description returns the reporter's account.
func (i *Incident) Description() string {
	return i.description
}

// ReportedAt returns when the incident was reported, in UTC.
func (i *Incident) ReportedAt() time.Time {
	return i.reportedAt
}

// IsResolved reports whether a solution was recorded.
func (i *Incident) IsResolved() bool {
	return i.resolvedAt != nil
}

// Resolution returns the recorded solution, empty while open.
func (i *Incident) Resolution() string {
	return i.resolution
}

// ResolvedAt returns when the incident was resolved, or nil.
func (i *Incident) ResolvedAt() *time.Time {
	if i.resolvedAt == nil {
		return nil
	}
	t := *i.resolvedAt
	return &t
}

// RequiresReassignment reports whether resolving the incident hands the shipment to another deliverer.
func (i *Incident) RequiresReassignment() bool {
	return i.kind.RequiresReassignment()
}

// Resolve closes the incident with a solution.
func (i *Incident) Resolve(solution string, now time.Time) error {
	if i.IsResolved() {
		return ErrIncidentAlreadyResolved
	}
	solution = strings.TrimSpace(solution)
	if solution == "" {
		return ErrSolutionIsRequired
	}

	resolvedAt := now.UTC()
	i.resolution = solution
	i.resolvedAt = &resolvedAt
	return nil
}

func (i *Incident) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Incident) setShipmentID(shipmentID kernel.UUID) error {
	if err := shipmentID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shipment", err)
	}
	i.shipmentID = shipmentID
	return nil
}

func (i *Incident) setDelivererID(delivererID *kernel.UUID) error {
	if delivererID == nil {
		return nil
	}
	if err := delivererID.Validate(); err != nil {
		return err
	}
	id := *delivererID
	i.delivererID = &id
	return nil
}

func (i *Incident) setType(kind Type) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	i.kind = kind
	return nil
}

func (i *Incident) setDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrDescriptionIsRequired
	}
	i.description = description
	return nil
}
