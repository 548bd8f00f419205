package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
	"sameday/internal/core/ports"
)

// ReassignShipmentCommandHandler moves a shipment to another deliverer of the
// same zone. If nobody can take it the shipment is still released: it is
// saved as PendingReassignment and services.ErrNoDelivererAvailable is
// returned.
type ReassignShipmentCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.DeliveryDispatcher
	rt         Runtime
}

// NewReassignShipmentCommandHandler creates the handler.
func NewReassignShipmentCommandHandler(uowFactory UoWFactory, rt Runtime) ReassignShipmentCommandHandler {
	return ReassignShipmentCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewDeliveryDispatcher(),
		rt:         rt,
	}
}

// Handle locks the shipment and its zone, releases the current deliverer and
// dispatches again, excluding the one that was released.
func (h ReassignShipmentCommandHandler) Handle(ctx context.Context, command ReassignShipmentCommand) error {
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

	s, err := uow.ShipmentRepository().Get(ctx, command.ShipmentID())
	if err != nil {
		return err
	}

	unlockZone := h.rt.lockZones(s.Destination().Zone())
	defer unlockZone()

	outcome, err := reassign(ctx, uow, h.dispatcher, s, command.Reason(), h.rt.now())
	if err != nil && !errors.Is(err, services.ErrNoDelivererAvailable) {
		return err
	}

	if commitErr := uow.Commit(ctx); commitErr != nil {
		return commitErr
	}

	logReassignment(h.rt.logger, s, outcome, err)
	h.rt.publish(ctx, outcome.event(h.rt, s, command.Reason()))
	return err
}

// reassignment is what reassign changed, for logging and events.
type reassignment struct {
	previous *kernel.UUID
	next     *deliverer.Deliverer
}

func (r reassignment) event(rt Runtime, s *shipment.Shipment, reason string) ports.Event {
	payload := map[string]any{
		"reason": reason,
		"status": s.Status().String(),
	}
	if r.previous != nil {
		payload["previousDelivererId"] = r.previous.String()
	}
	if r.next != nil {
		payload["delivererId"] = r.next.ID().String()
	}
	return rt.event(ports.EventShipmentReassigned, s.ID(), payload)
}

// reassign runs the dispatcher inside an open unit of work and saves every
// aggregate it touched. The zone lock must already be held. With
// services.ErrNoDelivererAvailable the released state is saved too, so the
// caller may still commit.
func reassign(
	ctx context.Context,
	uow UoW,
	dispatcher services.DeliveryDispatcher,
	s *shipment.Shipment,
	reason string,
	now time.Time,
	exclude ...kernel.UUID,
) (reassignment, error) {
	shipmentRepo := uow.ShipmentRepository()
	delivererRepo := uow.DelivererRepository()

	var (
		outcome reassignment
		current *deliverer.Deliverer
	)

	if id := s.Deliverer(); id != nil && !s.Status().IsTerminal() {
		var err error
		current, err = delivererRepo.Get(ctx, *id)
		if err != nil {
			return outcome, err
		}
		outcome.previous = id
	}

	candidates, err := delivererRepo.GetAvailableInZone(ctx, s.Destination().Zone())
	if err != nil {
		return outcome, err
	}
	candidates = services.ExcludeDeliverers(candidates, exclude...)

	next, dispatchErr := dispatcher.Reassign(s, current, candidates, reason, now)
	if dispatchErr != nil && !errors.Is(dispatchErr, services.ErrNoDelivererAvailable) {
		return outcome, dispatchErr
	}
	outcome.next = next

	if err := shipmentRepo.Update(ctx, s); err != nil {
		return outcome, err
	}
	if current != nil {
		if err := delivererRepo.Update(ctx, current); err != nil {
			return outcome, err
		}
	}
	if next != nil {
		if err := delivererRepo.Update(ctx, next); err != nil {
			return outcome, err
		}
	}

	return outcome, dispatchErr
}

func logReassignment(logger *zap.Logger, s *shipment.Shipment, outcome reassignment, err error) {
	fields := []zap.Field{zap.String("shipment_id", s.ID().String())}
	if outcome.previous != nil {
		fields = append(fields, zap.String("previous_deliverer_id", outcome.previous.String()))
	}
	if err != nil {
		logger.Warn("shipment released, no deliverer available", append(fields, zap.Error(err))...)
		return
	}
	logger.Info("shipment reassigned", append(fields, zap.String("deliverer_id", outcome.next.ID().String()))...)
}
