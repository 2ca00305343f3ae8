package service

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/authz"
	"blockfunders/internal/errors"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

// RoleService handles role and permission management. Every mutation runs
// through the Authorizer so the system-role guard holds.
type RoleService interface {
	List(ctx context.Context, search string, opts repository.ListOptions) ([]model.Role, int64, error)
	Get(ctx context.Context, id uint) (*model.Role, error)
	Create(ctx context.Context, name string) (*model.Role, error)
	Rename(ctx context.Context, id uint, name string) (*model.Role, error)
	Delete(ctx context.Context, id uint) error
	Permissions(ctx context.Context, roleID uint) ([]model.Permission, error)
	SetPermissions(ctx context.Context, roleID uint, names []string) ([]model.Permission, error)
	AllPermissions(ctx context.Context) ([]model.Permission, error)
	MyPermissions(ctx context.Context, userID uint) ([]string, error)
}

type roleService struct {
	roleRepo   repository.RoleRepository
	permRepo   repository.PermissionRepository
	authorizer *authz.Authorizer
}

// NewRoleService creates a new role service.
func NewRoleService(
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	authorizer *authz.Authorizer,
) RoleService {
	return &roleService{
		roleRepo:   roleRepo,
		permRepo:   permRepo,
		authorizer: authorizer,
	}
}

func (s *roleService) List(ctx context.Context, search string, opts repository.ListOptions) ([]model.Role, int64, error) {
	return s.roleRepo.List(ctx, search, opts)
}

func (s *roleService) Get(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByIDWithPermissions(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (s *roleService) Create(ctx context.Context, name string) (*model.Role, error) {
	role := &model.Role{Name: name, GuardName: "api"}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.NewValidation("name", "name already taken")
		}
		return nil, err
	}
	return role, nil
}

func (s *roleService) Rename(ctx context.Context, id uint, name string) (*model.Role, error) {
	return s.authorizer.RenameRole(ctx, id, name)
}

func (s *roleService) Delete(ctx context.Context, id uint) error {
	return s.authorizer.DeleteRole(ctx, id)
}

func (s *roleService) Permissions(ctx context.Context, roleID uint) ([]model.Permission, error) {
	role, err := s.roleRepo.FindByIDWithPermissions(ctx, roleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	return role.Permissions, nil
}

func (s *roleService) SetPermissions(ctx context.Context, roleID uint, names []string) ([]model.Permission, error) {
	return s.authorizer.SetRolePermissions(ctx, roleID, names)
}

func (s *roleService) AllPermissions(ctx context.Context) ([]model.Permission, error) {
	return s.permRepo.ListAll(ctx)
}

func (s *roleService) MyPermissions(ctx context.Context, userID uint) ([]string, error) {
	return s.authorizer.EffectivePermissions(ctx, userID)
}
