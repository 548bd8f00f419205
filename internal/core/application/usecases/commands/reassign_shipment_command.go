package commands

import (
	"errors"
	"strings"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/guard"
)

var ErrReassignShipmentCommandIsNotConstructed = errors.New(
	"ReassignShipmentCommand must be created via NewReassignShipmentCommand constructor",
)

// ReassignShipmentCommand moves a shipment to another deliverer. The reason is
// written to the shipment's instruction log.
type ReassignShipmentCommand struct {
	shipmentID kernel.UUID
	reason     string

	guard guard.ConstructorGuard
}

// NewReassignShipmentCommand creates the command. Returns
// shipment.ErrReasonIsRequired for a blank reason.
func NewReassignShipmentCommand(shipmentID kernel.UUID, reason string) (ReassignShipmentCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return ReassignShipmentCommand{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ReassignShipmentCommand{}, shipment.ErrReasonIsRequired
	}

	return ReassignShipmentCommand{
		shipmentID: shipmentID,
		reason:     reason,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrReassignShipmentCommandIsNotConstructed if validation fails.
func (c ReassignShipmentCommand) Validate() error {
	return c.guard.Validate(ErrReassignShipmentCommandIsNotConstructed)
}

// ShipmentID returns the shipment to move.
func (c ReassignShipmentCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

// Reason returns the trimmed reason.
func (c ReassignShipmentCommand) Reason() string {
	return c.reason
}
