// Package queue consumes dispatch tasks scheduled through asynq.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sameday/internal/adapters/out/queue"
	"sameday/internal/core/application/usecases/commands"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
	"sameday/internal/pkg/errs"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type AssignDelivererHandler interface {
	Handle(ctx context.Context, command commands.AssignDelivererCommand) error
}

type Consumer struct {
	assign AssignDelivererHandler
	logger *zap.Logger
}

func NewConsumer(assign AssignDelivererHandler, logger *zap.Logger) *Consumer {
	return &Consumer{assign: assign, logger: logger}
}

func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TypeAssignShipment, c.handleAssignShipment)
}

// handleAssignShipment returns an error only when trying again can help.
// A shipment nobody can take right now is left to the periodic job, which
// also covers deliverers that free up later.
func (c *Consumer) handleAssignShipment(ctx context.Context, task *asynq.Task) error {
	var payload queue.AssignShipmentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	shipmentID, err := kernel.UUIDFromString(payload.ShipmentID)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	command, err := commands.NewAssignDelivererCommand(shipmentID, nil)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	err = c.assign.Handle(ctx, command)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrNoDelivererAvailable):
		c.logger.Info("no deliverer free, shipment stays awaiting",
			zap.String("shipment_id", payload.ShipmentID))
		return nil
	case errors.Is(err, shipment.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrStateTransitionIsInvalid):
		c.logger.Debug("shipment no longer needs a deliverer",
			zap.String("shipment_id", payload.ShipmentID), zap.Error(err))
		return nil
	case errors.Is(err, errs.ErrObjectNotFound),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired):
		c.logger.Warn("dropping assign task",
			zap.String("shipment_id", payload.ShipmentID), zap.Error(err))
		return fmt.Errorf("%s: %v: %w", task.Type(), err, asynq.SkipRetry)
	default:
		return err
	}
}
