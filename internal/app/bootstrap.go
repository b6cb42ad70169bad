// Package app is the composition root: bootstrap stays orchestration-only.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"workdesk.io/workdesk/internal/api/handlers"
	"workdesk.io/workdesk/internal/app/modules"
	"workdesk.io/workdesk/internal/config"
	"workdesk.io/workdesk/internal/infrastructure"
	"workdesk.io/workdesk/internal/jobs"
	"workdesk.io/workdesk/internal/notification"
	"workdesk.io/workdesk/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config     *config.Config
	Router     *gin.Engine
	DB         *infrastructure.DatabaseClients
	Pools      *worker.Pools
	Dispatcher *notification.Dispatcher
	Modules    []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	records := modules.NewRecordsModule(infra)
	notify := modules.NewNotifyModule(infra, records)
	allModules := []modules.Module{records, notify}

	workers := river.NewWorkers()
	for _, mod := range allModules {
		mod.RegisterWorkers(workers)
	}
	if err := infra.InitRiver(workers); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}
	registerPeriodicJobs(infra, cfg)

	serverDeps := modules.NewServerDeps(cfg, allModules)
	server := handlers.NewServer(serverDeps)

	return &Application{
		Config:     cfg,
		Router:     newRouter(cfg, server),
		DB:         infra.DB,
		Pools:      infra.Pools,
		Dispatcher: notify.Dispatcher,
		Modules:    allModules,
	}, nil
}

// registerPeriodicJobs schedules the derivation sweeps and retention
// cleanup. The sweeps also run once on startup so a restarted server
// catches up immediately instead of waiting a full period.
func registerPeriodicJobs(infra *modules.Infrastructure, cfg *config.Config) {
	if infra.RiverClient == nil {
		return
	}
	infra.RiverClient.PeriodicJobs().Add(
		river.NewPeriodicJob(
			river.PeriodicInterval(cfg.Notify.MeetingRuleInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.MeetingReminderArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	)
	infra.RiverClient.PeriodicJobs().Add(
		river.NewPeriodicJob(
			river.PeriodicInterval(cfg.Notify.TaskRuleInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.OverdueTaskArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	)
	infra.RiverClient.PeriodicJobs().Add(
		river.NewPeriodicJob(
			river.PeriodicInterval(24*time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.NotificationCleanupArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	)
}
