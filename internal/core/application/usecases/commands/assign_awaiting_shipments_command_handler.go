package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
)

// AssignAwaitingShipmentsResult counts what one pass achieved.
type AssignAwaitingShipmentsResult struct {
	Assigned int
	Waiting  int
	Failed   int
}

// AssignAwaitingShipmentsCommandHandler walks paid shipments without a
// deliverer, highest priority first, and dispatches each one in its own
// transaction. Pending shipments go through AssignDeliverer, released ones
// through ReassignShipment.
type AssignAwaitingShipmentsCommandHandler struct {
	uowFactory UoWFactory
	assign     AssignDelivererCommandHandler
	reassign   ReassignShipmentCommandHandler
	rt         Runtime
}

// NewAssignAwaitingShipmentsCommandHandler creates the handler used by the
// background assignment job.
func NewAssignAwaitingShipmentsCommandHandler(uowFactory UoWFactory, rt Runtime) AssignAwaitingShipmentsCommandHandler {
	return AssignAwaitingShipmentsCommandHandler{
		uowFactory: uowFactory,
		assign:     NewAssignDelivererCommandHandler(uowFactory, rt),
		reassign:   NewReassignShipmentCommandHandler(uowFactory, rt),
		rt:         rt,
	}
}

// Handle makes one pass over at most command.Limit() awaiting shipments.
//
// Returns:
//   - AssignAwaitingShipmentsResult: how many were assigned, left waiting or failed
//   - error: only when the awaiting list itself cannot be read; per-shipment
//     failures are counted and logged
func (h AssignAwaitingShipmentsCommandHandler) Handle(
	ctx context.Context,
	command AssignAwaitingShipmentsCommand,
) (AssignAwaitingShipmentsResult, error) {
	var result AssignAwaitingShipmentsResult

	if err := command.Validate(); err != nil {
		return result, err
	}

	awaiting, err := h.listAwaiting(ctx, command.Limit())
	if err != nil {
		return result, err
	}

	for _, s := range awaiting {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := h.dispatch(ctx, s)
		switch {
		case err == nil:
			result.Assigned++
		case errors.Is(err, services.ErrNoDelivererAvailable):
			result.Waiting++
			h.rt.logger.Info("no deliverer available yet",
				zap.String("shipment_id", s.ID().String()),
				zap.String("zone", s.Destination().Zone()))
		default:
			result.Failed++
			h.rt.logger.Error("dispatch attempt failed",
				zap.String("shipment_id", s.ID().String()),
				zap.Error(err))
		}
	}

	return result, nil
}

func (h AssignAwaitingShipmentsCommandHandler) listAwaiting(ctx context.Context, limit int) ([]*shipment.Shipment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	awaiting, err := uow.ShipmentRepository().GetAwaitingDeliverer(ctx, limit)
	if err != nil {
		return nil, err
	}
	return awaiting, uow.Commit(ctx)
}

func (h AssignAwaitingShipmentsCommandHandler) dispatch(ctx context.Context, s *shipment.Shipment) error {
	if s.Status() == shipment.PendingReassignment {
		command, err := NewReassignShipmentCommand(s.ID(), AutomaticReassignmentReason)
		if err != nil {
			return err
		}
		return h.reassign.Handle(ctx, command)
	}

	command, err := NewAssignDelivererCommand(s.ID(), nil)
	if err != nil {
		return err
	}
	return h.assign.Handle(ctx, command)
}
