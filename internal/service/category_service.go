package service

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/errors"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

// CategoryService handles campaign category management.
type CategoryService interface {
	List(ctx context.Context, search string, opts repository.ListOptions) ([]model.CampaignCategory, int64, error)
	Get(ctx context.Context, id uint) (*model.CampaignCategory, error)
	Create(ctx context.Context, name string) (*model.CampaignCategory, error)
	Rename(ctx context.Context, id uint, name string) (*model.CampaignCategory, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List(ctx context.Context, search string, opts repository.ListOptions) ([]model.CampaignCategory, int64, error) {
	return s.categoryRepo.List(ctx, search, opts)
}

func (s *categoryService) Get(ctx context.Context, id uint) (*model.CampaignCategory, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*model.CampaignCategory, error) {
	category := &model.CampaignCategory{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.NewValidation("name", "name already taken")
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, id uint, name string) (*model.CampaignCategory, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.NewValidation("name", "name already taken")
		}
		return nil, err
	}
	return category, nil
}

// Delete refuses to orphan campaigns: a category still referenced by any
// campaign cannot be removed.
func (s *categoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountCampaigns(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.ErrCategoryInUse
	}
	return s.categoryRepo.Delete(ctx, id)
}
