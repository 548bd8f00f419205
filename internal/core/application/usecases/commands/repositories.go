// Package commands holds the write side of the application: one command and
// one handler per business operation. Each handler runs in a single unit of
// work and publishes its events only after the commit succeeded.
package commands

import (
	"context"

	"sameday/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	DelivererRepoFactory interface {
		DelivererRepository() ports.DelivererRepository
	}

	IncidentRepoFactory interface {
		IncidentRepository() ports.IncidentRepository
	}

	RateRepoFactory interface {
		RateRepository() ports.RateRepository
	}

	// DelivererUoW is enough for commands that only touch deliverers.
	DelivererUoW interface {
		TxManager
		DelivererRepoFactory
	}

	DelivererUoWFactory interface {
		Create() DelivererUoW
	}

	// RateUoW is enough for commands that only touch rates.
	RateUoW interface {
		TxManager
		RateRepoFactory
	}

	RateUoWFactory interface {
		Create() RateUoW
	}

	// UoW spans every aggregate. Dispatch and lifecycle commands use it so the
	// shipment and its deliverer are saved together.
	//
	//	uow := factory.Create()
	//	if err := uow.Begin(ctx); err != nil {
	//	    return err
	//	}
	//	defer func() { _ = uow.Rollback(ctx) }()
	//	...
	//	return uow.Commit(ctx)
	UoW interface {
		TxManager
		ShipmentRepoFactory
		DelivererRepoFactory
		IncidentRepoFactory
		RateRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
