package commands

import (
	"errors"
	"strings"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/guard"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// ConfirmPaymentCommand reports the payment gateway's verdict for a shipment.
type ConfirmPaymentCommand struct {
	shipmentID kernel.UUID
	succeeded  bool
	reference  string

	guard guard.ConstructorGuard
}

// NewConfirmPaymentCommand builds the command. reference is the gateway's
// transaction id and may be empty.
func NewConfirmPaymentCommand(shipmentID kernel.UUID, succeeded bool, reference string) (ConfirmPaymentCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return ConfirmPaymentCommand{}, err
	}

	return ConfirmPaymentCommand{
		shipmentID: shipmentID,
		succeeded:  succeeded,
		reference:  strings.TrimSpace(reference),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrConfirmPaymentCommandIsNotConstructed if validation fails.
func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

// ShipmentID returns the shipment that was paid for.
func (c ConfirmPaymentCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

// Succeeded reports whether the gateway accepted the payment.
func (c ConfirmPaymentCommand) Succeeded() bool {
	return c.succeeded
}

// Reference returns the gateway reference, possibly empty.
func (c ConfirmPaymentCommand) Reference() string {
	return c.reference
}
