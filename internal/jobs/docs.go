// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field syntax with seconds).
//
// # Available Jobs
//
// DispatchSweepJob runs the dispatch sweep: expire stale offers, then offer every
// order awaiting assignment. The sweep keeps no state between runs, so a missed or
// skipped tick only delays dispatch until the next one.
//
// # Usage
//
//	sweepJob := jobs.NewDispatchSweepJob(sweepHandler, "*/5 * * * * *", 30*time.Second, logger)
//	jobManager := jobs.NewJobManager(sweepJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A sweep that cannot start (policy or order listing unavailable) is logged as an
// error. Per-order failures are already logged by the sweep and only counted here.
package jobs
