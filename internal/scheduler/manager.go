package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"blockfunders/internal/logger"
	"blockfunders/internal/repository"
)

// Manager owns the periodic jobs: the funding-ledger audit and the
// informational deadline sweep.
type Manager struct {
	scheduler gocron.Scheduler
}

// New builds the scheduler and registers all jobs.
func New(
	campaignRepo repository.CampaignRepository,
	txRepo repository.TransactionRepository,
	auditInterval, sweepInterval time.Duration,
) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	audit := NewLedgerAuditJob(campaignRepo, txRepo)
	if _, err := s.NewJob(
		gocron.DurationJob(auditInterval),
		gocron.NewTask(audit.Execute),
		gocron.WithName("ledger-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, err
	}

	sweep := NewDeadlineSweepJob(txRepo)
	if _, err := s.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(sweep.Execute),
		gocron.WithName("deadline-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, err
	}

	return &Manager{scheduler: s}, nil
}

// Start begins running jobs on their schedules.
func (m *Manager) Start() {
	m.scheduler.Start()
	logger.Info("scheduler started")
}

// Stop shuts the scheduler down.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("scheduler shutdown: %v", err)
	}
}
