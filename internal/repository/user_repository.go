package repository

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/model"
)

// UserListFilter narrows user listing.
type UserListFilter struct {
	Query  string
	RoleID uint
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByIDWithRoles(ctx context.Context, id uint) (*model.User, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*model.User, error)
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	List(ctx context.Context, filter UserListFilter, opts ListOptions) ([]model.User, int64, error)
	ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error
	AppendRole(ctx context.Context, user *model.User, role *model.Role) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDWithRoles(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithDetails loads roles and the user's funding ledger rows.
func (r *userRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Preload("Transactions").
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin resolves a user by username or email, whichever matches.
func (r *userRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserListFilter, opts ListOptions) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like, like)
	}
	if filter.RoleID != 0 {
		q = q.Joins("JOIN user_roles ON user_roles.user_id = users.id").
			Where("user_roles.role_id = ?", filter.RoleID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Paginate {
		offset, limit := opts.limits()
		q = q.Offset(offset).Limit(limit)
	}

	var users []model.User
	if err := q.Preload("Roles").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error {
	return r.db.WithContext(ctx).Model(user).Association("Roles").Replace(roles)
}

func (r *userRepository) AppendRole(ctx context.Context, user *model.User, role *model.Role) error {
	return r.db.WithContext(ctx).Model(user).Association("Roles").Append(role)
}
