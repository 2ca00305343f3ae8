package repository

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/model"
)

// ClaimRepository defines claim persistence operations.
type ClaimRepository interface {
	Create(ctx context.Context, claim *model.Claim) error
	FindByID(ctx context.Context, id uint) (*model.Claim, error)
	ListByUser(ctx context.Context, userID uint, opts ListOptions) ([]model.Claim, int64, error)
	MarkClaimed(ctx context.Context, id uint, txHash, link string) (int64, error)
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository builds a GORM-backed repository.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, claim *model.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *claimRepository) FindByID(ctx context.Context, id uint) (*model.Claim, error) {
	var claim model.Claim
	if err := r.db.WithContext(ctx).First(&claim, id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) ListByUser(ctx context.Context, userID uint, opts ListOptions) ([]model.Claim, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Claim{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Paginate {
		offset, limit := opts.limits()
		q = q.Offset(offset).Limit(limit)
	}

	var claims []model.Claim
	if err := q.Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// MarkClaimed records the mint hash and flips status, but only while the
// claim is still pending. Returns affected rows; 0 means the claim was
// already fulfilled. A reused hash fails with gorm.ErrDuplicatedKey via
// the unique index.
func (r *claimRepository) MarkClaimed(ctx context.Context, id uint, txHash, link string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Claim{}).
		Where("id = ? AND status = ?", id, model.ClaimStatusPending).
		Updates(map[string]interface{}{
			"tx_hash": txHash,
			"link":    link,
			"status":  model.ClaimStatusClaimed,
		})
	return res.RowsAffected, res.Error
}
