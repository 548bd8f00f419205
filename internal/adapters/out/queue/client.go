package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sameday/internal/core/domain/model/kernel"

	"github.com/hibiken/asynq"
)

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Queue         string
	Concurrency   int
	MaxRetry      int
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler implements ports.AssignmentScheduler. At most one pending task
// exists per shipment: the task id is derived from the shipment id.
type Scheduler struct {
	client   enqueuer
	queue    string
	maxRetry int
}

func NewScheduler(client enqueuer, cfg Config) *Scheduler {
	queue := strings.TrimSpace(cfg.Queue)
	if queue == "" {
		queue = DefaultQueue
	}
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 5
	}
	return &Scheduler{client: client, queue: queue, maxRetry: maxRetry}
}

func (s *Scheduler) ScheduleAssignment(ctx context.Context, shipmentID kernel.UUID) error {
	task, err := NewAssignShipmentTask(AssignShipmentPayload{ShipmentID: shipmentID.String()})
	if err != nil {
		return err
	}

	_, err = s.client.EnqueueContext(ctx, task,
		asynq.Queue(s.queue),
		asynq.MaxRetry(s.maxRetry),
		asynq.TaskID("assign:"+shipmentID.String()),
		asynq.Timeout(30*time.Second),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s for %s: %w", TypeAssignShipment, shipmentID, err)
	}
	return nil
}

func RedisOpt(cfg Config) asynq.RedisClientOpt {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// ServerConfig returns the options for the worker that consumes the queue.
func ServerConfig(cfg Config) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	queue := strings.TrimSpace(cfg.Queue)
	if queue == "" {
		queue = DefaultQueue
	}
	return RedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
	}
}
