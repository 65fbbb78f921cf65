package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep every five seconds.
const DefaultSweepSchedule = "*/5 * * * * *"

// SweepRunner runs one dispatch sweep.
type SweepRunner interface {
	Handle(ctx context.Context, cmd commands.RunDispatchSweepCommand) (commands.SweepSummary, error)
}

// DispatchSweepJob triggers the dispatch sweep on a cron schedule. A tick that
// fires while the previous sweep is still running is skipped.
type DispatchSweepJob struct {
	runner   SweepRunner
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDispatchSweepJob creates the job. schedule uses the six-field cron syntax
// with seconds; an empty schedule falls back to DefaultSweepSchedule. Each run is
// bounded by timeout.
func NewDispatchSweepJob(runner SweepRunner, schedule string, timeout time.Duration, logger *slog.Logger) *DispatchSweepJob {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &DispatchSweepJob{
		runner:   runner,
		schedule: schedule,
		timeout:  timeout,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With("component", "dispatch_sweep_job"),
	}
}

func (j *DispatchSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch sweep job started", "schedule", j.schedule)
	return nil
}

func (j *DispatchSweepJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	summary, err := j.runner.Handle(ctx, commands.NewRunDispatchSweepCommand("cron"))
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch sweep failed", "error", err)
		return
	}
	if summary.Errors > 0 {
		j.logger.WarnContext(ctx, "Dispatch sweep finished with errors", "errors", summary.Errors)
	}
}

// Stop waits for a running sweep to finish, up to the job timeout.
func (j *DispatchSweepJob) Stop() {
	stopped := j.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(j.timeout):
	}
	j.logger.InfoContext(context.Background(), "Dispatch sweep job stopped")
}
