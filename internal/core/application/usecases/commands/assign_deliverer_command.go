package commands

import (
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/guard"
)

var ErrAssignDelivererCommandIsNotConstructed = errors.New(
	"AssignDelivererCommand must be created via NewAssignDelivererCommand constructor",
)

// AssignDelivererCommand dispatches a paid shipment. Without a deliverer id
// the best candidate of the destination zone is chosen.
type AssignDelivererCommand struct {
	shipmentID  kernel.UUID
	delivererID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignDelivererCommand creates an assignment request.
//
// Parameters:
//   - shipmentID: the paid shipment to dispatch
//   - delivererID: the deliverer to assign, or nil to let the dispatcher choose
//
// Returns:
//   - AssignDelivererCommand: the validated command; delivererID is copied
//   - error: when either id is invalid
//
// Example:
//
//	auto, _ := NewAssignDelivererCommand(shipmentID, nil)
//	manual, _ := NewAssignDelivererCommand(shipmentID, &delivererID)
func NewAssignDelivererCommand(shipmentID kernel.UUID, delivererID *kernel.UUID) (AssignDelivererCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return AssignDelivererCommand{}, err
	}
	if delivererID != nil {
		if err := delivererID.Validate(); err != nil {
			return AssignDelivererCommand{}, err
		}
		id := *delivererID
		delivererID = &id
	}

	return AssignDelivererCommand{
		shipmentID:  shipmentID,
		delivererID: delivererID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignDelivererCommandIsNotConstructed if validation fails.
func (c AssignDelivererCommand) Validate() error {
	return c.guard.Validate(ErrAssignDelivererCommandIsNotConstructed)
}

// ShipmentID returns the shipment to dispatch.
func (c AssignDelivererCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

// DelivererID is nil for automatic dispatch.
func (c AssignDelivererCommand) DelivererID() *kernel.UUID {
	return c.delivererID
}
