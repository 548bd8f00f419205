package commands

import (
	"context"
	"errors"

	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
	"sameday/internal/core/ports"
)

// ResolveIncidentCommandHandler closes an incident. When the incident type
// calls for it and the shipment is still open, the shipment is handed to a
// deliverer other than the one it was reported against, using the solution
// as the reassignment reason.
type ResolveIncidentCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.DeliveryDispatcher
	rt         Runtime
}

// NewResolveIncidentCommandHandler creates the handler.
func NewResolveIncidentCommandHandler(uowFactory UoWFactory, rt Runtime) ResolveIncidentCommandHandler {
	return ResolveIncidentCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewDeliveryDispatcher(),
		rt:         rt,
	}
}

// Handle marks the incident resolved under an incident lock. Resolving twice
// returns incident.ErrIncidentAlreadyResolved.
func (h ResolveIncidentCommandHandler) Handle(ctx context.Context, command ResolveIncidentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	unlockIncident := h.rt.locker.Lock("incident/" + command.IncidentID().String())
	defer unlockIncident()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	incidentRepo := uow.IncidentRepository()

	inc, err := incidentRepo.Get(ctx, command.IncidentID())
	if err != nil {
		return err
	}

	now := h.rt.now()
	if err := inc.Resolve(command.Solution(), now); err != nil {
		return err
	}

	var (
		reassigned  *shipment.Shipment
		outcome     reassignment
		dispatchErr error
	)

	if inc.RequiresReassignment() {
		unlockShipment := h.rt.lockShipment(inc.ShipmentID())
		defer unlockShipment()

		s, err := uow.ShipmentRepository().Get(ctx, inc.ShipmentID())
		if err != nil {
			return err
		}

		if stillOwedReassignment(s, inc) {
			unlockZone := h.rt.lockZones(s.Destination().Zone())
			defer unlockZone()

			var exclude []kernel.UUID
			if id := inc.Deliverer(); id != nil {
				exclude = append(exclude, *id)
			}

			outcome, dispatchErr = reassign(ctx, uow, h.dispatcher, s, command.Solution(), now, exclude...)
			if dispatchErr != nil && !errors.Is(dispatchErr, services.ErrNoDelivererAvailable) {
				return dispatchErr
			}
			reassigned = s
		}
	}

	if err := incidentRepo.Update(ctx, inc); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	events := []ports.Event{
		h.rt.event(ports.EventIncidentResolved, inc.ID(), map[string]any{
			"shipmentId": inc.ShipmentID().String(),
			"solution":   inc.Resolution(),
		}),
	}
	if reassigned != nil {
		logReassignment(h.rt.logger, reassigned, outcome, dispatchErr)
		events = append(events, outcome.event(h.rt, reassigned, command.Solution()))
	}
	h.rt.publish(ctx, events...)

	return dispatchErr
}

// stillOwedReassignment is false once the shipment is closed, was never paid,
// or has meanwhile been taken by a deliverer other than the reported one.
func stillOwedReassignment(s *shipment.Shipment, inc *incident.Incident) bool {
	if s.Status().IsTerminal() || !s.IsPaid() {
		return false
	}
	current := s.Deliverer()
	if current == nil {
		return true
	}
	reported := inc.Deliverer()
	return reported != nil && current.IsEqual(*reported)
}
