package scheduler

import (
	"context"
	"time"

	"blockfunders/internal/logger"
	"blockfunders/internal/repository"
)

// LedgerAuditJob verifies the funding invariant: every campaign's
// collected_amount must equal the sum of its ledger rows. A mismatch
// means something wrote the counter outside the fund path and is logged
// loudly; the job never repairs silently.
type LedgerAuditJob struct {
	campaignRepo repository.CampaignRepository
	txRepo       repository.TransactionRepository
}

// NewLedgerAuditJob creates the audit job.
func NewLedgerAuditJob(campaignRepo repository.CampaignRepository, txRepo repository.TransactionRepository) *LedgerAuditJob {
	return &LedgerAuditJob{campaignRepo: campaignRepo, txRepo: txRepo}
}

// Execute walks all campaigns and compares counter against ledger sum.
func (j *LedgerAuditJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ids, err := j.campaignRepo.ListIDs(ctx)
	if err != nil {
		logger.Error("ledger audit: list campaigns: %v", err)
		return
	}

	mismatches := 0
	for _, id := range ids {
		collected, err := j.txRepo.CollectedAmount(ctx, id)
		if err != nil {
			logger.Error("ledger audit: campaign %d counter: %v", id, err)
			continue
		}
		sum, err := j.txRepo.SumByCampaign(ctx, id)
		if err != nil {
			logger.Error("ledger audit: campaign %d ledger sum: %v", id, err)
			continue
		}
		if !collected.Equal(sum) {
			mismatches++
			logger.Error("ledger audit: campaign %d collected_amount %s != ledger sum %s", id, collected, sum)
		}
	}

	if mismatches == 0 {
		logger.Debug("ledger audit: %d campaigns consistent", len(ids))
	}
}
