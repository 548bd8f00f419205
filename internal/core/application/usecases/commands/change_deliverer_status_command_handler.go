package commands

import (
	"context"

	"go.uber.org/zap"
)

// ChangeDelivererStatusCommandHandler applies a status the deliverer chose.
// The deliverer is read once to learn the zone and again under the zone
// lock, so a concurrent dispatch cannot be overwritten.
type ChangeDelivererStatusCommandHandler struct {
	uowFactory DelivererUoWFactory
	rt         Runtime
}

// NewChangeDelivererStatusCommandHandler creates the handler over a DelivererUoWFactory.
func NewChangeDelivererStatusCommandHandler(
	uowFactory DelivererUoWFactory,
	rt Runtime,
) ChangeDelivererStatusCommandHandler {
	return ChangeDelivererStatusCommandHandler{uowFactory: uowFactory, rt: rt}
}

// Handle applies the requested status. Only Available, OnBreak and OffDuty can
// be chosen; choosing Available re-derives Active or Busy from the current load.
func (h ChangeDelivererStatusCommandHandler) Handle(ctx context.Context, command ChangeDelivererStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DelivererRepository()

	d, err := repo.Get(ctx, command.DelivererID())
	if err != nil {
		return err
	}

	unlock := h.rt.lockZones(d.Zone())
	defer unlock()

	d, err = repo.Get(ctx, command.DelivererID())
	if err != nil {
		return err
	}

	previous := d.Status()
	if err := d.ChangeStatus(command.Status()); err != nil {
		return err
	}

	if err := repo.Update(ctx, d); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.logger.Info("deliverer status changed",
		zap.String("deliverer_id", d.ID().String()),
		zap.Stringer("from", previous),
		zap.Stringer("to", d.Status()))
	return nil
}
