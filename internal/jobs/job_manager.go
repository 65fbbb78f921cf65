package jobs

import (
	"fmt"
)

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs []Job
}

func NewJobManager(jobs ...Job) *JobManager {
	return &JobManager{jobs: jobs}
}

// StartAll starts the jobs in order. If one fails to start, the jobs already
// started are stopped again.
func (jm *JobManager) StartAll() error {
	for i, job := range jm.jobs {
		if err := job.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start job %d: %w", i, err)
		}
	}

	return nil
}

// StopAll stops all jobs in reverse start order.
func (jm *JobManager) StopAll() {
	for i := len(jm.jobs) - 1; i >= 0; i-- {
		jm.jobs[i].Stop()
	}
}
