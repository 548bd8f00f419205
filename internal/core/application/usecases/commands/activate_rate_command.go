package commands

import (
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/pkg/guard"
)

var ErrActivateRateCommandIsNotConstructed = errors.New(
	"ActivateRateCommand must be created via NewActivateRateCommand constructor",
)

// ActivateRateCommand replaces the tariff used to price new shipments.
// Existing shipments keep the cost they were created with.
type ActivateRateCommand struct {
	rateID kernel.UUID
	tariff rate.Tariff

	guard guard.ConstructorGuard
}

// NewActivateRateCommand creates a command for a new rate with a generated id.
// Returns rate's validation error when a coefficient is negative.
func NewActivateRateCommand(tariff rate.Tariff) (ActivateRateCommand, error) {
	if err := tariff.Validate(); err != nil {
		return ActivateRateCommand{}, err
	}

	return ActivateRateCommand{
		rateID: kernel.NewUUID(),
		tariff: tariff,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrActivateRateCommandIsNotConstructed if validation fails.
func (c ActivateRateCommand) Validate() error {
	return c.guard.Validate(ErrActivateRateCommandIsNotConstructed)
}

// RateID returns the id the new rate is stored under.
func (c ActivateRateCommand) RateID() kernel.UUID {
	return c.rateID
}

// Tariff returns the coefficients to activate.
func (c ActivateRateCommand) Tariff() rate.Tariff {
	return c.tariff
}
