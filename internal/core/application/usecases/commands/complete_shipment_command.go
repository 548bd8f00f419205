package commands

import (
	"errors"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/guard"
)

var ErrCompleteShipmentCommandIsNotConstructed = errors.New(
	"CompleteShipmentCommand must be created via NewCompleteShipmentCommand constructor",
)

// CompleteShipmentCommand confirms delivery and carries the customer's rating.
type CompleteShipmentCommand struct {
	shipmentID kernel.UUID
	rating     int

	guard guard.ConstructorGuard
}

// NewCompleteShipmentCommand creates a completion request. The rating must be
// within deliverer.MinRating and deliverer.MaxRating.
func NewCompleteShipmentCommand(shipmentID kernel.UUID, rating int) (CompleteShipmentCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return CompleteShipmentCommand{}, err
	}
	if err := deliverer.ValidateRating(rating); err != nil {
		return CompleteShipmentCommand{}, err
	}

	return CompleteShipmentCommand{
		shipmentID: shipmentID,
		rating:     rating,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompleteShipmentCommandIsNotConstructed if validation fails.
func (c CompleteShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCompleteShipmentCommandIsNotConstructed)
}

// ShipmentID returns the delivered shipment.
func (c CompleteShipmentCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

// Rating returns the customer's rating of the deliverer.
func (c CompleteShipmentCommand) Rating() int {
	return c.rating
}
