// Package jobs runs periodic background work with github.com/robfig/cron/v3.
//
// AwaitingAssignmentJob retries dispatch for paid shipments that still have
// no deliverer: shipments nobody could take when they were paid, and
// shipments released by an incident. It is the safety net behind the asynq
// assignment tasks.
//
//	jobManager, err := jobs.NewJobManager(assignAwaitingHandler, jobs.Config{Schedule: "@every 30s"}, logger)
//	if err != nil {
//		return err
//	}
//	jobManager.StartAll()
//	defer jobManager.StopAll()
//
// A pass that finds no free deliverer is an expected outcome and is logged at
// info level.
package jobs
