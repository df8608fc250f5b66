package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/realtime"
)

// SystemStatsJob periodically broadcasts directory statistics to the admin
// role room so dashboards see connection counts without polling.
type SystemStatsJob struct {
	hub    *realtime.Hub
	cron   *cron.Cron
	logger *slog.Logger
}

// NewSystemStatsJob creates a job broadcasting hub statistics every 30 seconds.
func NewSystemStatsJob(hub *realtime.Hub, logger *slog.Logger) *SystemStatsJob {
	return &SystemStatsJob{
		hub:    hub,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "system_stats_job"),
	}
}

// Start begins the stats broadcast on a 30 second schedule.
func (j *SystemStatsJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		stats := j.hub.Stats()
		j.hub.Broadcast(realtime.Event{
			Name: realtime.EventSystemStats,
			Data: stats,
		}, realtime.RoleRoom(actor.RoleAdmin))
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "System stats job started (broadcasting every 30 seconds)")
	return nil
}

// Stop stops the stats broadcast.
func (j *SystemStatsJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "System stats job stopped")
}
