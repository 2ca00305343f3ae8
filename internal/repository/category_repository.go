package repository

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/model"
)

// CategoryRepository defines campaign category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.CampaignCategory) error
	Update(ctx context.Context, category *model.CampaignCategory) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.CampaignCategory, error)
	List(ctx context.Context, search string, opts ListOptions) ([]model.CampaignCategory, int64, error)
	CountCampaigns(ctx context.Context, categoryID uint) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository builds a GORM-backed repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.CampaignCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *model.CampaignCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.CampaignCategory{}, id).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*model.CampaignCategory, error) {
	var category model.CampaignCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, search string, opts ListOptions) ([]model.CampaignCategory, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CampaignCategory{})
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Paginate {
		offset, limit := opts.limits()
		q = q.Offset(offset).Limit(limit)
	}

	var categories []model.CampaignCategory
	if err := q.Order("name").Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// CountCampaigns reports how many campaigns still reference the category;
// deletion is refused while this is non-zero.
func (r *categoryRepository) CountCampaigns(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Campaign{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
