package commands

import (
	"context"

	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/ports"
)

// CompleteShipmentCommandHandler marks an in-transit shipment delivered and
// folds the rating into its deliverer's history in the same transaction.
type CompleteShipmentCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

// NewCompleteShipmentCommandHandler creates the handler.
func NewCompleteShipmentCommandHandler(uowFactory UoWFactory, rt Runtime) CompleteShipmentCommandHandler {
	return CompleteShipmentCommandHandler{uowFactory: uowFactory, rt: rt}
}

// Handle delivers the shipment, drops it from the deliverer's load and records
// the rating. Returns shipment.ErrInvalidTransition unless the shipment is InTransit.
func (h CompleteShipmentCommandHandler) Handle(ctx context.Context, command CompleteShipmentCommand) error {
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

	delivererID := s.Deliverer()
	if delivererID == nil && !s.Status().IsTerminal() {
		return shipment.ErrNoDelivererAssigned
	}

	unlockZone := h.rt.lockZones(s.Destination().Zone())
	defer unlockZone()

	if err := s.Deliver(h.rt.now()); err != nil {
		return err
	}

	d, err := delivererRepo.Get(ctx, *delivererID)
	if err != nil {
		return err
	}
	if err := d.RecordDelivery(s.ID(), command.Rating()); err != nil {
		return err
	}

	if err := shipmentRepo.Update(ctx, s); err != nil {
		return err
	}
	if err := delivererRepo.Update(ctx, d); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.publish(ctx, h.rt.event(ports.EventShipmentDelivered, s.ID(), map[string]any{
		"delivererId":   d.ID().String(),
		"rating":        command.Rating(),
		"averageRating": d.AverageRating(),
	}))
	return nil
}
