package commands

import (
	"context"

	"go.uber.org/zap"

	"sameday/internal/core/ports"
)

// ConfirmPaymentCommandHandler records a payment outcome. A successful
// payment makes the shipment eligible for dispatch and asks the scheduler for
// an assignment attempt; a declined one is written to the instruction log.
type ConfirmPaymentCommandHandler struct {
	uowFactory UoWFactory
	scheduler  ports.AssignmentScheduler
	rt         Runtime
}

// NewConfirmPaymentCommandHandler builds the handler. With a nil scheduler
// paid shipments wait for the background assignment job.
func NewConfirmPaymentCommandHandler(
	uowFactory UoWFactory,
	scheduler ports.AssignmentScheduler,
	rt Runtime,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		rt:         rt,
	}
}

// Handle marks the shipment paid or logs the rejection. A scheduling failure
// after commit is logged and not returned: the payment is already recorded and
// the assignment job will find the shipment.
func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, command ConfirmPaymentCommand) error {
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

	if command.Succeeded() {
		err = s.MarkPaid(h.rt.now())
	} else {
		err = s.RecordPaymentFailure()
	}
	if err != nil {
		return err
	}

	if err := shipmentRepo.Update(ctx, s); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	if !command.Succeeded() {
		return nil
	}

	h.rt.publish(ctx, h.rt.event(ports.EventShipmentPaid, s.ID(), map[string]any{
		"reference": command.Reference(),
	}))

	if h.scheduler != nil {
		if err := h.scheduler.ScheduleAssignment(ctx, s.ID()); err != nil {
			h.rt.logger.Warn("assignment not scheduled, leaving it to the retry job",
				zap.String("shipment_id", s.ID().String()), zap.Error(err))
		}
	}
	return nil
}
