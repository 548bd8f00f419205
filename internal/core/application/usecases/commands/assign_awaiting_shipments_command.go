package commands

import (
	"errors"

	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

// AutomaticReassignmentReason goes to the instruction log when the retry job
// finds a deliverer for a released shipment.
const AutomaticReassignmentReason = "automatic reassignment"

var ErrAssignAwaitingShipmentsCommandIsNotConstructed = errors.New(
	"AssignAwaitingShipmentsCommand must be created via NewAssignAwaitingShipmentsCommand constructor",
)

// AssignAwaitingShipmentsCommand retries dispatch for up to limit paid
// shipments that still have no deliverer.
type AssignAwaitingShipmentsCommand struct {
	limit int
	guard guard.ConstructorGuard
}

// NewAssignAwaitingShipmentsCommand creates a command for one pass of the
// retry job. limit must be positive.
func NewAssignAwaitingShipmentsCommand(limit int) (AssignAwaitingShipmentsCommand, error) {
	if limit <= 0 {
		return AssignAwaitingShipmentsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return AssignAwaitingShipmentsCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c AssignAwaitingShipmentsCommand) Validate() error {
	return c.guard.Validate(ErrAssignAwaitingShipmentsCommandIsNotConstructed)
}

// Limit returns how many shipments one pass may look at.
func (c AssignAwaitingShipmentsCommand) Limit() int {
	return c.limit
}
