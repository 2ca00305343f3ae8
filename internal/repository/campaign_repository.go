package repository

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/model"
)

// CampaignListFilter narrows campaign listing.
type CampaignListFilter struct {
	Query      string
	UserID     uint
	CategoryID uint
}

// CampaignRepository defines campaign persistence operations. Publish and
// Fund pair the status/amount mutation with the ledger append in a single
// database transaction; a duplicate tx hash fails the whole unit with
// gorm.ErrDuplicatedKey.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *model.Campaign) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Campaign, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*model.Campaign, error)
	List(ctx context.Context, filter CampaignListFilter, opts ListOptions) ([]model.Campaign, int64, error)
	Publish(ctx context.Context, campaignID uint, auditTx *model.FundingTransaction) error
	Fund(ctx context.Context, campaignID uint, fundingTx *model.FundingTransaction) error
	AddUpdate(ctx context.Context, update *model.CampaignUpdate) error
	ListIDs(ctx context.Context) ([]uint, error)
}

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository builds a GORM-backed repository.
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *model.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *campaignRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Campaign{}, id).Error
}

func (r *campaignRepository) FindByID(ctx context.Context, id uint) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// FindByIDWithDetails loads the campaign with category and ledger rows.
func (r *campaignRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Transactions").
		First(&campaign, id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) List(ctx context.Context, filter CampaignListFilter, opts ListOptions) ([]model.Campaign, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Campaign{})

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Paginate {
		offset, limit := opts.limits()
		q = q.Offset(offset).Limit(limit)
	}

	var campaigns []model.Campaign
	if err := q.Preload("Category").Preload("Updates").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// Publish flips the campaign to published and appends the zero-amount
// audit ledger row, atomically.
func (r *campaignRepository) Publish(ctx context.Context, campaignID uint, auditTx *model.FundingTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(auditTx).Error; err != nil {
			return err
		}
		return tx.Model(&model.Campaign{}).
			Where("id = ?", campaignID).
			Update("status", model.CampaignStatusPublished).Error
	})
}

// Fund appends the ledger row and increments collected_amount in one
// transaction. The increment is a SQL expression, not a read-modify-write,
// so concurrent fund calls with distinct hashes all land.
func (r *campaignRepository) Fund(ctx context.Context, campaignID uint, fundingTx *model.FundingTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fundingTx).Error; err != nil {
			return err
		}
		return tx.Model(&model.Campaign{}).
			Where("id = ?", campaignID).
			Update("collected_amount", gorm.Expr("collected_amount + ?", fundingTx.Amount)).Error
	})
}

func (r *campaignRepository) AddUpdate(ctx context.Context, update *model.CampaignUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

// ListIDs returns all campaign IDs; the ledger audit job walks these.
func (r *campaignRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Campaign{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
