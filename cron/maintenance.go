package cron

import (
	"context"
	"time"

	"tailortalk/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops expired sessions and reports how many went.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

// Maintenance runs the periodic background jobs of the server.
type Maintenance struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewMaintenance(loc *time.Location) *Maintenance {
	ctx, cancel := context.WithCancel(context.Background())
	return &Maintenance{
		cron:   cron.New(cron.WithLocation(loc)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddSessionSweep schedules store.Sweep on spec (e.g. "@every 5m").
func (m *Maintenance) AddSessionSweep(spec string, store Sweeper) error {
	_, err := m.cron.AddFunc(spec, func() {
		if removed := store.Sweep(m.ctx); removed > 0 {
			utils.GetLogger().Info("[SessionSweeper] Expired sessions removed", zap.Int("count", removed))
		}
	})
	return err
}

// AddHealthChecks refreshes the health snapshot on spec. One check runs
// immediately so /health is populated at startup.
func (m *Maintenance) AddHealthChecks(spec string, probes map[string]utils.Probe) error {
	utils.RunHealthChecks(m.ctx, probes)
	_, err := m.cron.AddFunc(spec, func() {
		status := utils.RunHealthChecks(m.ctx, probes)
		for name, ok := range status.Services {
			if !ok {
				utils.GetLogger().Warn("[HealthMonitor] Collaborator unreachable", zap.String("service", name))
			}
		}
	})
	return err
}

func (m *Maintenance) Start() {
	m.cron.Start()
	utils.GetLogger().Info("Maintenance jobs started", zap.Int("jobs", len(m.cron.Entries())))
}

// Stop waits for running jobs to finish.
func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
	m.cancel()
	utils.GetLogger().Info("Maintenance jobs stopped")
}
