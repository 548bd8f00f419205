package commands

import (
	"context"
	"errors"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/ports"
	"sameday/internal/pkg/errs"
)

// RegisterDelivererCommandHandler adds a deliverer to the fleet. The document
// number is unique across the fleet.
type RegisterDelivererCommandHandler struct {
	uowFactory DelivererUoWFactory
	rt         Runtime
}

// NewRegisterDelivererCommandHandler creates the handler over a DelivererUoWFactory.
func NewRegisterDelivererCommandHandler(uowFactory DelivererUoWFactory, rt Runtime) RegisterDelivererCommandHandler {
	return RegisterDelivererCommandHandler{uowFactory: uowFactory, rt: rt}
}

// Handle stores the new deliverer as Available with no history.
// Returns ErrDocumentAlreadyRegistered when another deliverer already uses the
// document.
func (h RegisterDelivererCommandHandler) Handle(ctx context.Context, command RegisterDelivererCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	unlock := h.rt.locker.Lock("document/" + command.Document())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DelivererRepository()

	_, err := repo.GetByDocument(ctx, command.Document())
	switch {
	case err == nil:
		return ErrDocumentAlreadyRegistered
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	registered, err := deliverer.NewDeliverer(
		command.DelivererID(),
		command.Document(),
		command.Name(),
		command.Phone(),
		command.Zone(),
		command.Location(),
	)
	if err != nil {
		return err
	}

	if err := repo.Add(ctx, registered); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.publish(ctx, h.rt.event(ports.EventDelivererRegistered, registered.ID(), map[string]any{
		"zone": registered.Zone(),
	}))
	return nil
}
