package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Config struct {
	Schedule string
	Limit    int
	Timeout  time.Duration
}

// JobManager owns the cron scheduler every job runs on.
type JobManager struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewJobManager registers the jobs. It fails when the schedule cannot be parsed.
func NewJobManager(assignAwaiting AssignAwaitingShipmentsHandler, cfg Config, logger *zap.Logger) (*JobManager, error) {
	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})))

	job := NewAwaitingAssignmentJob(assignAwaiting, cfg.Limit, cfg.Timeout, logger)
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("failed to schedule awaiting assignment job %q: %w", schedule, err)
	}

	return &JobManager{cron: c, logger: logger}, nil
}

func (jm *JobManager) StartAll() {
	jm.cron.Start()
	jm.logger.Info("background jobs started", zap.Int("jobs", len(jm.cron.Entries())))
}

// StopAll stops scheduling and waits for running jobs to finish.
func (jm *JobManager) StopAll() {
	<-jm.cron.Stop().Done()
	jm.logger.Info("background jobs stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
