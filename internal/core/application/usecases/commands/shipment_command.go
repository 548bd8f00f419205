package commands

import (
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/guard"
)

var (
	ErrStartTransitCommandIsNotConstructed = errors.New(
		"StartTransitCommand must be created via NewStartTransitCommand constructor",
	)
	ErrCancelShipmentCommandIsNotConstructed = errors.New(
		"CancelShipmentCommand must be created via NewCancelShipmentCommand constructor",
	)
)

// StartTransitCommand records that the deliverer picked the parcel up.
type StartTransitCommand struct {
	shipmentID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewStartTransitCommand creates the command for a valid shipment id.
func NewStartTransitCommand(shipmentID kernel.UUID) (StartTransitCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return StartTransitCommand{}, err
	}
	return StartTransitCommand{shipmentID: shipmentID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrStartTransitCommandIsNotConstructed if validation fails.
func (c StartTransitCommand) Validate() error {
	return c.guard.Validate(ErrStartTransitCommandIsNotConstructed)
}

// ShipmentID returns the shipment being picked up.
func (c StartTransitCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

// CancelShipmentCommand cancels a shipment that has not left with a deliverer.
type CancelShipmentCommand struct {
	shipmentID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewCancelShipmentCommand creates the command for a valid shipment id.
func NewCancelShipmentCommand(shipmentID kernel.UUID) (CancelShipmentCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return CancelShipmentCommand{}, err
	}
	return CancelShipmentCommand{shipmentID: shipmentID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCancelShipmentCommandIsNotConstructed if validation fails.
func (c CancelShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelShipmentCommandIsNotConstructed)
}

// ShipmentID returns the shipment to cancel.
func (c CancelShipmentCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}
