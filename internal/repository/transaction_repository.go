package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"blockfunders/internal/model"
)

// TransactionRepository reads the append-only funding ledger. Writes go
// through CampaignRepository.Publish/Fund so they stay atomic with the
// campaign mutation.
type TransactionRepository interface {
	SumByUser(ctx context.Context, userID uint) (decimal.Decimal, error)
	SumByCampaign(ctx context.Context, campaignID uint) (decimal.Decimal, error)
	CollectedAmount(ctx context.Context, campaignID uint) (decimal.Decimal, error)
	ListExpiredCampaigns(ctx context.Context, now time.Time) ([]model.Campaign, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository builds a GORM-backed repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// SumByUser totals everything a user has ever donated, across campaigns.
// The reward prompt includes this figure.
func (r *transactionRepository) SumByUser(ctx context.Context, userID uint) (decimal.Decimal, error) {
	return r.sum(ctx, "user_id = ?", userID)
}

func (r *transactionRepository) SumByCampaign(ctx context.Context, campaignID uint) (decimal.Decimal, error) {
	return r.sum(ctx, "campaign_id = ?", campaignID)
}

func (r *transactionRepository) sum(ctx context.Context, cond string, arg interface{}) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.FundingTransaction{}).
		Where(cond, arg).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// CollectedAmount reads the denormalized counter on the campaign row, for
// comparison against SumByCampaign in the ledger audit.
func (r *transactionRepository) CollectedAmount(ctx context.Context, campaignID uint) (decimal.Decimal, error) {
	var campaign model.Campaign
	if err := r.db.WithContext(ctx).Select("collected_amount").First(&campaign, campaignID).Error; err != nil {
		return decimal.Zero, err
	}
	return campaign.CollectedAmount, nil
}

// ListExpiredCampaigns returns campaigns whose deadline has passed. The
// sweep only reports them; expiry carries no state transition.
func (r *transactionRepository) ListExpiredCampaigns(ctx context.Context, now time.Time) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := r.db.WithContext(ctx).
		Where("deadline < ? AND status = ?", now, model.CampaignStatusPublished).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}
