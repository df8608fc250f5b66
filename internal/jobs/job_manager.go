// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3, managed through JobManager.
package jobs

import (
	"fmt"
	"log/slog"

	"crabor/internal/realtime"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	systemStatsJob *SystemStatsJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(hub *realtime.Hub, logger *slog.Logger) *JobManager {
	return &JobManager{
		systemStatsJob: NewSystemStatsJob(hub, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.systemStatsJob.Start(); err != nil {
		return fmt.Errorf("failed to start system stats job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.systemStatsJob.Stop()
}
