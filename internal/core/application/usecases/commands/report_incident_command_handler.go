package commands

import (
	"context"

	"go.uber.org/zap"

	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/ports"
)

// ReportIncidentCommandHandler records an incident against a shipment. An
// incident that calls for a new deliverer takes the shipment away from the
// current one straight away and leaves it PendingReassignment; the current
// deliverer is made Available whatever else they carry.
type ReportIncidentCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

// NewReportIncidentCommandHandler creates the handler.
func NewReportIncidentCommandHandler(uowFactory UoWFactory, rt Runtime) ReportIncidentCommandHandler {
	return ReportIncidentCommandHandler{uowFactory: uowFactory, rt: rt}
}

// Handle stores the incident and links it to the shipment.
//
// Returns:
//   - nil when the incident was recorded
//   - shipment.ErrTerminalShipment for a Delivered or Cancelled shipment
//   - shipment.ErrInvalidTransition when an incident that needs a new deliverer
//     is reported against a shipment nobody has picked up yet
func (h ReportIncidentCommandHandler) Handle(ctx context.Context, command ReportIncidentCommand) error {
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

	s, err := shipmentRepo.Get(ctx, command.ShipmentID())
	if err != nil {
		return err
	}

	now := h.rt.now()

	reported, err := incident.NewIncident(
		command.IncidentID(),
		s.ID(),
		s.Deliverer(),
		command.Type(),
		command.Description(),
		now,
	)
	if err != nil {
		return err
	}

	if err := s.AttachIncident(reported.ID()); err != nil {
		return err
	}

	if reported.RequiresReassignment() {
		unlockZone := h.rt.lockZones(s.Destination().Zone())
		defer unlockZone()

		released, err := s.Escalate()
		if err != nil {
			return err
		}
		if released != nil {
			delivererRepo := uow.DelivererRepository()
			d, err := delivererRepo.Get(ctx, *released)
			if err != nil {
				return err
			}
			d.Free(s.ID())
			if err := delivererRepo.Update(ctx, d); err != nil {
				return err
			}
		}
	}

	if err := uow.IncidentRepository().Add(ctx, reported); err != nil {
		return err
	}
	if err := shipmentRepo.Update(ctx, s); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.logger.Info("incident reported",
		zap.String("incident_id", reported.ID().String()),
		zap.String("shipment_id", s.ID().String()),
		zap.String("type", reported.Type().String()),
		zap.String("shipment_status", s.Status().String()))

	h.rt.publish(ctx, h.rt.event(ports.EventIncidentReported, reported.ID(), map[string]any{
		"shipmentId":           s.ID().String(),
		"type":                 reported.Type().String(),
		"requiresReassignment": reported.RequiresReassignment(),
	}))
	return nil
}
