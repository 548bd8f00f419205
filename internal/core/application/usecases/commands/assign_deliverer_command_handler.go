package commands

import (
	"context"

	"go.uber.org/zap"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
	"sameday/internal/core/ports"
)

// AssignDelivererCommandHandler gives a paid shipment to a deliverer of its
// destination zone, either the one named in the command or the best match.
//
// Example:
//
//	handler := NewAssignDelivererCommandHandler(uowFactory, rt)
//	cmd, _ := NewAssignDelivererCommand(shipmentID, nil)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, services.ErrNoDelivererAvailable):
//	    // the retry job picks it up later
//	case errors.Is(err, shipment.ErrNotPaid):
//	    // wait for the payment confirmation
//	case err != nil:
//	    return err
//	}
type AssignDelivererCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.DeliveryDispatcher
	rt         Runtime
}

// NewAssignDelivererCommandHandler creates a handler for assignment requests.
// Requires a UoWFactory so the shipment and the deliverer change in one transaction.
func NewAssignDelivererCommandHandler(uowFactory UoWFactory, rt Runtime) AssignDelivererCommandHandler {
	return AssignDelivererCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewDeliveryDispatcher(),
		rt:         rt,
	}
}

// Handle locks the shipment, then its destination zone, so two dispatches in the
// same zone never read the same deliverer load. With a named deliverer the
// assignment is checked by DeliveryDispatcher.Assign; otherwise Dispatch picks
// one of the zone's available deliverers. Publishes shipment.assigned after commit.
func (h AssignDelivererCommandHandler) Handle(ctx context.Context, command AssignDelivererCommand) error {
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
	if !s.IsPaid() {
		return shipment.ErrNotPaid
	}

	unlockZone := h.rt.lockZones(s.Destination().Zone())
	defer unlockZone()

	var chosen *deliverer.Deliverer
	now := h.rt.now()

	if id := command.DelivererID(); id != nil {
		chosen, err = delivererRepo.Get(ctx, *id)
		if err != nil {
			return err
		}
		if err := h.dispatcher.Assign(s, chosen, now); err != nil {
			return err
		}
	} else {
		candidates, err := delivererRepo.GetAvailableInZone(ctx, s.Destination().Zone())
		if err != nil {
			return err
		}
		chosen, err = h.dispatcher.Dispatch(s, candidates, now)
		if err != nil {
			return err
		}
	}

	if err := shipmentRepo.Update(ctx, s); err != nil {
		return err
	}
	if err := delivererRepo.Update(ctx, chosen); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.logger.Info("shipment assigned",
		zap.String("shipment_id", s.ID().String()),
		zap.String("deliverer_id", chosen.ID().String()),
		zap.Int("deliverer_load", chosen.Load()))

	h.rt.publish(ctx, h.rt.event(ports.EventShipmentAssigned, s.ID(), map[string]any{
		"delivererId": chosen.ID().String(),
		"zone":        s.Destination().Zone(),
		"etaMinutes":  services.EstimateDeliveryMinutes(s.Distance(), s.Priority()),
	}))
	return nil
}
