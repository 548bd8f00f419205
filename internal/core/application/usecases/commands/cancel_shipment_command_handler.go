package commands

import (
	"context"

	"sameday/internal/core/ports"
)

// CancelShipmentCommandHandler cancels a shipment and takes it off its
// deliverer's load. The deliverer becomes Available again only when nothing
// else is left to carry.
type CancelShipmentCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

// NewCancelShipmentCommandHandler creates the handler.
func NewCancelShipmentCommandHandler(uowFactory UoWFactory, rt Runtime) CancelShipmentCommandHandler {
	return CancelShipmentCommandHandler{uowFactory: uowFactory, rt: rt}
}

// Handle cancels the shipment. Returns shipment.ErrInvalidTransition once it is
// InTransit and shipment.ErrTerminalShipment when it is already Delivered or
// Cancelled.
func (h CancelShipmentCommandHandler) Handle(ctx context.Context, command CancelShipmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	unlockShipment := h.rt.lockShipment(command.ShipmentID())
	defer unlockShipment()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shipmentRepo := uow.ShipmentRepository()
	delivererRepo := uow.DelivererRepository()

	s, err := shipmentRepo.Get(ctx, command.ShipmentID())
	if err != nil {
		return err
	}

	unlockZone := h.rt.lockZones(s.Destination().Zone())
	defer unlockZone()

	released, err := s.Cancel()
	if err != nil {
		return err
	}

	if released != nil {
		d, err := delivererRepo.Get(ctx, *released)
		if err != nil {
			return err
		}
		if err := d.ReleaseShipment(s.ID()); err != nil {
			return err
		}
		if err := delivererRepo.Update(ctx, d); err != nil {
			return err
		}
	}

	if err := shipmentRepo.Update(ctx, s); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	payload := map[string]any{}
	if released != nil {
		payload["releasedDelivererId"] = released.String()
	}
	h.rt.publish(ctx, h.rt.event(ports.EventShipmentCancelled, s.ID(), payload))
	return nil
}
