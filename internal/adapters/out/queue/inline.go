package queue

import (
	"context"

	"sameday/internal/core/domain/model/kernel"

	"go.uber.org/zap"
)

// InlineScheduler runs the dispatch attempt in a goroutine of its own. It is
// used when no Redis queue is configured; shipments it fails to place are
// left to the periodic assignment job.
type InlineScheduler struct {
	assign func(ctx context.Context, shipmentID kernel.UUID) error
	logger *zap.Logger
}

func NewInlineScheduler(assign func(ctx context.Context, shipmentID kernel.UUID) error, logger *zap.Logger) *InlineScheduler {
	return &InlineScheduler{assign: assign, logger: logger}
}

func (s *InlineScheduler) ScheduleAssignment(ctx context.Context, shipmentID kernel.UUID) error {
	go func() {
		if err := s.assign(context.WithoutCancel(ctx), shipmentID); err != nil {
			s.logger.Info("inline assignment did not place shipment",
				zap.String("shipment_id", shipmentID.String()), zap.Error(err))
		}
	}()
	return nil
}
