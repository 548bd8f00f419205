package commands

import (
	"context"

	"sameday/internal/core/ports"
)

// StartTransitCommandHandler records that the deliverer picked the shipment up.
// Only an Assigned shipment can start transit.
//
// Example:
//
//	handler := NewStartTransitCommandHandler(uowFactory, rt)
//	cmd, _ := NewStartTransitCommand(shipmentID)
//	if err := handler.Handle(ctx, cmd); errors.Is(err, shipment.ErrInvalidTransition) {
//	    // not assigned yet, or already on the way
//	}
type StartTransitCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

// NewStartTransitCommandHandler creates the handler. Requires a UoWFactory for
// the shipment update.
func NewStartTransitCommandHandler(uowFactory UoWFactory, rt Runtime) StartTransitCommandHandler {
	return StartTransitCommandHandler{uowFactory: uowFactory, rt: rt}
}

// Handle moves the shipment to InTransit under its shipment lock and publishes
// shipment.in_transit after commit. Returns errs.ErrObjectNotFound for an
// unknown shipment and shipment.ErrInvalidTransition from any status other than
// Assigned.
func (h StartTransitCommandHandler) Handle(ctx context.Context, command StartTransitCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	unlock := h.rt.lockShipment(command.ShipmentID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shipmentRepo := uow.ShipmentRepository()

	s, err := shipmentRepo.Get(ctx, command.ShipmentID())
	if err != nil {
		return err
	}

	if err := s.StartTransit(); err != nil {
		return err
	}

	if err := shipmentRepo.Update(ctx, s); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.publish(ctx, h.rt.event(ports.EventShipmentInTransit, s.ID(), map[string]any{
		"delivererId": s.Deliverer().String(),
	}))
	return nil
}
