package jobs

import (
	"context"
	"time"

	"sameday/internal/core/application/usecases/commands"

	"go.uber.org/zap"
)

const (
	DefaultSchedule = "@every 30s"
	DefaultLimit    = 100
)

type AssignAwaitingShipmentsHandler interface {
	Handle(ctx context.Context, command commands.AssignAwaitingShipmentsCommand) (commands.AssignAwaitingShipmentsResult, error)
}

// AwaitingAssignmentJob dispatches paid shipments that are still waiting for
// a deliverer.
type AwaitingAssignmentJob struct {
	handler AssignAwaitingShipmentsHandler
	limit   int
	timeout time.Duration
	logger  *zap.Logger
}

func NewAwaitingAssignmentJob(handler AssignAwaitingShipmentsHandler, limit int, timeout time.Duration, logger *zap.Logger) *AwaitingAssignmentJob {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &AwaitingAssignmentJob{
		handler: handler,
		limit:   limit,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "awaiting_assignment_job")),
	}
}

// Run is one pass. It implements cron.Job.
func (j *AwaitingAssignmentJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	cmd, err := commands.NewAssignAwaitingShipmentsCommand(j.limit)
	if err != nil {
		j.logger.Error("invalid job configuration", zap.Int("limit", j.limit), zap.Error(err))
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("awaiting assignment pass failed", zap.Error(err))
		return
	}

	if result.Assigned+result.Waiting+result.Failed == 0 {
		return
	}
	j.logger.Info("awaiting assignment pass finished",
		zap.Int("assigned", result.Assigned),
		zap.Int("waiting", result.Waiting),
		zap.Int("failed", result.Failed))
}
