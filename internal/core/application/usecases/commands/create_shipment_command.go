package commands

import (
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

var ErrCreateShipmentCommandIsNotConstructed = errors.New(
	"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
)

// CreateShipmentCommand asks for a new shipment to be priced and recorded.
// The shipment id is generated here so the caller can read the result back.
type CreateShipmentCommand struct {
	shipmentID  kernel.UUID
	customerID  kernel.UUID
	origin      kernel.Address
	destination kernel.Address
	parcel      shipment.Parcel
	priority    shipment.Priority

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand creates a command to register a new shipment and
// generates its id. Every part is validated and all problems are joined into
// one error.
//
// Parameters:
//   - customerID: the customer placing the shipment
//   - origin, destination: validated addresses; the destination zone decides who can carry it
//   - parcel: weight, volume and handling flags
//   - priority: Standard, High or Urgent
//
// Returns:
//   - CreateShipmentCommand: the command, with ShipmentID already set
//   - error: the joined validation errors
func NewCreateShipmentCommand(
	customerID kernel.UUID,
	origin kernel.Address,
	destination kernel.Address,
	parcel shipment.Parcel,
	priority shipment.Priority,
) (CreateShipmentCommand, error) {
	command := CreateShipmentCommand{
		shipmentID: kernel.NewUUID(),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCustomerID(customerID),
		command.setOrigin(origin),
		command.setDestination(destination),
		command.setParcel(parcel),
		command.setPriority(priority),
	); err != nil {
		return CreateShipmentCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateShipmentCommandIsNotConstructed if validation fails.
func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

// ShipmentID returns the id the shipment will be stored under.
func (c CreateShipmentCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

// CustomerID returns the customer placing the shipment.
func (c CreateShipmentCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// Origin returns the pick-up address.
func (c CreateShipmentCommand) Origin() kernel.Address {
	return c.origin
}

// Destination returns the drop-off address.
func (c CreateShipmentCommand) Destination() kernel.Address {
	return c.destination
}

// Parcel returns what is being shipped.
func (c CreateShipmentCommand) Parcel() shipment.Parcel {
	return c.parcel
}

// Priority returns the requested service level.
func (c CreateShipmentCommand) Priority() shipment.Priority {
	return c.priority
}

func (c *CreateShipmentCommand) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer", err)
	}
	c.customerID = id
	return nil
}

func (c *CreateShipmentCommand) setOrigin(origin kernel.Address) error {
	if err := origin.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("origin", err)
	}
	c.origin = origin
	return nil
}

func (c *CreateShipmentCommand) setDestination(destination kernel.Address) error {
	if err := destination.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("destination", err)
	}
	c.destination = destination
	return nil
}

func (c *CreateShipmentCommand) setParcel(parcel shipment.Parcel) error {
	if err := parcel.Validate(); err != nil {
		return err
	}
	c.parcel = parcel
	return nil
}

func (c *CreateShipmentCommand) setPriority(priority shipment.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	c.priority = priority
	return nil
}
