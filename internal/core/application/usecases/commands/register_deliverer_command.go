package commands

import (
	"errors"
	"strings"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"
)

var (
	ErrRegisterDelivererCommandIsNotConstructed = errors.New(
		"RegisterDelivererCommand must be created via NewRegisterDelivererCommand constructor",
	)
	ErrChangeDelivererStatusCommandIsNotConstructed = errors.New(
		"ChangeDelivererStatusCommand must be created via NewChangeDelivererStatusCommand constructor",
	)
	ErrDocumentAlreadyRegistered = errs.NewValueIsInvalidErrorWithCause(
		"document", errors.New("already registered"))
)

// RegisterDelivererCommand adds a deliverer to the fleet of one zone.
//
// Example:
//
//	loc, _ := kernel.NewLocation(4, 7)
//	cmd, err := NewRegisterDelivererCommand("1094", "Ana", "3001234567", "North", loc)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrDocumentAlreadyRegistered) {
//	    // the document belongs to someone else
//	}
type RegisterDelivererCommand struct {
	delivererID kernel.UUID
	document    string
	name        string
	phone       string
	zone        string
	location    kernel.Location

	guard guard.ConstructorGuard
}

// NewRegisterDelivererCommand creates the command and generates the deliverer
// id. Text fields are trimmed and must not be blank.
func NewRegisterDelivererCommand(
	document string,
	name string,
	phone string,
	zone string,
	location kernel.Location,
) (RegisterDelivererCommand, error) {
	command := RegisterDelivererCommand{
		delivererID: kernel.NewUUID(),
		document:    strings.TrimSpace(document),
		name:        strings.TrimSpace(name),
		phone:       strings.TrimSpace(phone),
		zone:        strings.TrimSpace(zone),
		location:    location,
		guard:       guard.NewConstructorGuard(),
	}

	var errList []error
	if command.document == "" {
		errList = append(errList, deliverer.ErrDocumentIsRequired)
	}
	if command.name == "" {
		errList = append(errList, deliverer.ErrNameIsRequired)
	}
	if command.phone == "" {
		errList = append(errList, deliverer.ErrPhoneIsRequired)
	}
	if command.zone == "" {
		errList = append(errList, kernel.ErrZoneIsRequired)
	}
	errList = append(errList, location.Validate())

	if err := errors.Join(errList...); err != nil {
		return RegisterDelivererCommand{}, err
	}
	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRegisterDelivererCommandIsNotConstructed if validation fails.
func (c RegisterDelivererCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDelivererCommandIsNotConstructed)
}

// DelivererID returns the id the deliverer will be stored under.
func (c RegisterDelivererCommand) DelivererID() kernel.UUID {
	return c.delivererID
}

// Document returns the identity document number.
func (c RegisterDelivererCommand) Document() string {
	return c.document
}

// Name returns the deliverer's name.
func (c RegisterDelivererCommand) Name() string {
	return c.name
}

// Phone returns the contact number.
func (c RegisterDelivererCommand) Phone() string {
	return c.phone
}

// Zone returns the zone the deliverer works in.
func (c RegisterDelivererCommand) Zone() string {
	return c.zone
}

// Location returns the deliverer's starting position.
func (c RegisterDelivererCommand) Location() kernel.Location {
	return c.location
}

// ChangeDelivererStatusCommand carries a status the deliverer picked for
// themselves: Available, OnBreak or OffDuty.
type ChangeDelivererStatusCommand struct {
	delivererID kernel.UUID
	status      deliverer.Status

	guard guard.ConstructorGuard
}

// NewChangeDelivererStatusCommand creates the command. Whether the status may
// be chosen is decided by the deliverer, not here.
func NewChangeDelivererStatusCommand(
	delivererID kernel.UUID,
	status deliverer.Status,
) (ChangeDelivererStatusCommand, error) {
	if err := errors.Join(delivererID.Validate(), status.Validate()); err != nil {
		return ChangeDelivererStatusCommand{}, err
	}

	return ChangeDelivererStatusCommand{
		delivererID: delivererID,
		status:      status,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrChangeDelivererStatusCommandIsNotConstructed if validation fails.
func (c ChangeDelivererStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeDelivererStatusCommandIsNotConstructed)
}

// DelivererID returns the deliverer changing status.
func (c ChangeDelivererStatusCommand) DelivererID() kernel.UUID {
	return c.delivererID
}

// Status returns the requested status.
func (c ChangeDelivererStatusCommand) Status() deliverer.Status {
	return c.status
}
