package scheduler

import (
	"context"
	"time"

	"blockfunders/internal/logger"
	"blockfunders/internal/repository"
)

// DeadlineSweepJob reports published campaigns whose deadline has passed.
// Expiry is informational: no state transition happens and funding past
// the deadline is still accepted.
type DeadlineSweepJob struct {
	txRepo repository.TransactionRepository
}

// NewDeadlineSweepJob creates the sweep job.
func NewDeadlineSweepJob(txRepo repository.TransactionRepository) *DeadlineSweepJob {
	return &DeadlineSweepJob{txRepo: txRepo}
}

// Execute logs every published campaign past its deadline.
func (j *DeadlineSweepJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	campaigns, err := j.txRepo.ListExpiredCampaigns(ctx, time.Now())
	if err != nil {
		logger.Error("deadline sweep: %v", err)
		return
	}
	for _, c := range campaigns {
		logger.Info("campaign %d (%q) passed its deadline %s with %s of %s collected",
			c.ID, c.Title, c.Deadline.Format(time.RFC3339), c.CollectedAmount, c.TargetAmount)
	}
}
