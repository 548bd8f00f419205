package shipment

import (
	"errors"
	"fmt"
	"strings"

	"sameday/internal/pkg/errs"
)

var (
	// ErrInvalidTransition classifies every refused lifecycle move.
	ErrInvalidTransition = errs.ErrStateTransitionIsInvalid

	// ErrTerminalShipment is returned when a DELIVERED or CANCELLED shipment is asked to change.
	ErrTerminalShipment = errors.New("shipment is in a terminal state")
)

// Status is the lifecycle state of a shipment.
//
//	Pending ──> Assigned ──> InTransit ──> Delivered
//	               │   ▲          │
//	               ▼   │          ▼
//	            Incident ──> PendingReassignment ──> Assigned
//
// Pending, Assigned, Incident and PendingReassignment may also move to
// Cancelled. Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota
	Pending
	Assigned
	InTransit
	Incident
	PendingReassignment
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:             "UNKNOWN",
		Pending:             "PENDING",
		Assigned:            "ASSIGNED",
		InTransit:           "IN_TRANSIT",
		Incident:            "INCIDENT",
		PendingReassignment: "PENDING_REASSIGNMENT",
		Delivered:           "DELIVERED",
		Cancelled:           "CANCELLED",
	}
}

// getTransitions is the complete transition table. A move absent from it is refused.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal and unknown statuses have no outgoing edges
	return map[Status][]Status{
		Pending:             {Assigned, Cancelled},
		Assigned:            {InTransit, Incident, Cancelled},
		InTransit:           {Delivered, Incident},
		Incident:            {PendingReassignment, Cancelled},
		PendingReassignment: {Assigned, Cancelled},
	}
}

// Statuses lists every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Assigned, InTransit, Incident, PendingReassignment, Delivered, Cancelled}
}

// ParseStatus maps the persisted or wire name back to a Status.
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a shipment status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// RequiresDeliverer reports whether a shipment in s must reference a deliverer.
func (s Status) RequiresDeliverer() bool {
	return s == Assigned || s == InTransit || s == Incident
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range getTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next when the table allows it. A refusal from a
// terminal status matches both ErrInvalidTransition and ErrTerminalShipment.
func (s Status) TransitionTo(next Status) (Status, error) {
	if s.IsTerminal() {
		return Unknown, errs.NewStateTransitionIsInvalidErrorWithCause(
			"shipment", s.String(), next.String(), ErrTerminalShipment)
	}
	if !s.CanTransitionTo(next) {
		return Unknown, errs.NewStateTransitionIsInvalidError("shipment", s.String(), next.String())
	}
	return next, nil
}

// ValidateCanHaveDeliverer checks the status against the presence of a deliverer.
// Delivered keeps its deliverer for history and accepts both.
func (s Status) ValidateCanHaveDeliverer(hasDeliverer bool) error {
	if s == Delivered {
		return nil
	}
	if hasDeliverer && !s.RequiresDeliverer() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is not a valid status to have a deliverer", s))
	}
	if !hasDeliverer && s.RequiresDeliverer() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is not a valid status to have no deliverer", s))
	}
	return nil
}
