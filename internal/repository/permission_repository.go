package repository

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/model"
)

// PermissionRepository defines permission persistence operations.
type PermissionRepository interface {
	ListAll(ctx context.Context) ([]model.Permission, error)
	FindByNames(ctx context.Context, names []string) ([]model.Permission, error)
	FirstOrCreate(ctx context.Context, name string) (*model.Permission, error)
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository builds a GORM-backed repository.
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) ListAll(ctx context.Context) ([]model.Permission, error) {
	var permissions []model.Permission
	if err := r.db.WithContext(ctx).Order("name").Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *permissionRepository) FindByNames(ctx context.Context, names []string) ([]model.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var permissions []model.Permission
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *permissionRepository) FirstOrCreate(ctx context.Context, name string) (*model.Permission, error) {
	var permission model.Permission
	err := r.db.WithContext(ctx).
		Where(model.Permission{Name: name}).
		FirstOrCreate(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}
