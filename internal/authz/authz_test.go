package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"blockfunders/internal/errors"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

// MockRoleRepository is a mock implementation of RoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *model.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Update(ctx context.Context, role *model.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByIDWithPermissions(ctx context.Context, id uint) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context, search string, opts repository.ListOptions) ([]model.Role, int64, error) {
	args := m.Called(ctx, search, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Role), args.Get(1).(int64), args.Error(2)
}

func (m *MockRoleRepository) ReplacePermissions(ctx context.Context, role *model.Role, permissions []model.Permission) error {
	args := m.Called(ctx, role, permissions)
	return args.Error(0)
}

func (m *MockRoleRepository) ListByUser(ctx context.Context, userID uint) ([]model.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Role), args.Error(1)
}

// MockPermissionRepository is a mock implementation of PermissionRepository.
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) ListAll(ctx context.Context) ([]model.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Permission), args.Error(1)
}

func (m *MockPermissionRepository) FindByNames(ctx context.Context, names []string) ([]model.Permission, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Permission), args.Error(1)
}

func (m *MockPermissionRepository) FirstOrCreate(ctx context.Context, name string) (*model.Permission, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Permission), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDWithRoles(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserListFilter, opts repository.ListOptions) ([]model.User, int64, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error {
	args := m.Called(ctx, user, roles)
	return args.Error(0)
}

func (m *MockUserRepository) AppendRole(ctx context.Context, user *model.User, role *model.Role) error {
	args := m.Called(ctx, user, role)
	return args.Error(0)
}

func roleWithPerms(name string, perms ...string) model.Role {
	role := model.Role{Name: name}
	for _, p := range perms {
		role.Permissions = append(role.Permissions, model.Permission{Name: p})
	}
	return role
}

func TestEffectivePermissions_UnionAcrossRoles(t *testing.T) {
	mockRole := new(MockRoleRepository)
	mockRole.On("ListByUser", mock.Anything, uint(7)).Return([]model.Role{
		roleWithPerms("editor", "campaigns.write", "campaigns.read"),
		roleWithPerms("viewer", "campaigns.read", "users.read"),
	}, nil)

	a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
	names, err := a.EffectivePermissions(context.Background(), 7)

	assert.NoError(t, err)
	// Duplicates collapse and the result is sorted.
	assert.Equal(t, []string{"campaigns.read", "campaigns.write", "users.read"}, names)
}

func TestEffectivePermissions_NoRoles(t *testing.T) {
	mockRole := new(MockRoleRepository)
	mockRole.On("ListByUser", mock.Anything, uint(7)).Return([]model.Role{}, nil)

	a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
	names, err := a.EffectivePermissions(context.Background(), 7)

	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestHasPermission(t *testing.T) {
	mockRole := new(MockRoleRepository)
	mockRole.On("ListByUser", mock.Anything, uint(7)).Return([]model.Role{
		roleWithPerms("viewer", "campaigns.read"),
	}, nil)

	a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)

	ok, err := a.HasPermission(context.Background(), 7, "campaigns.read")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.HasPermission(context.Background(), 7, "campaigns.delete")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSetRolePermissions(t *testing.T) {
	t.Run("system role is untouchable", func(t *testing.T) {
		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(1)).Return(&model.Role{Name: "admin", IsSystem: true}, nil)

		a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
		_, err := a.SetRolePermissions(context.Background(), 1, []string{"users.read"})

		assert.ErrorIs(t, err, errors.ErrCannotModifySystemRole)
		mockRole.AssertNotCalled(t, "ReplacePermissions", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown permission name fails validation", func(t *testing.T) {
		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{Name: "editor"}, nil)

		mockPerm := new(MockPermissionRepository)
		mockPerm.On("FindByNames", mock.Anything, []string{"users.read", "nope.bogus"}).
			Return([]model.Permission{{Name: "users.read"}}, nil)

		a := NewAuthorizer(mockRole, mockPerm, new(MockUserRepository), nil)
		_, err := a.SetRolePermissions(context.Background(), 2, []string{"users.read", "nope.bogus"})

		var verrs *errors.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("replaces the whole set", func(t *testing.T) {
		role := &model.Role{Name: "editor"}
		perms := []model.Permission{{Name: "users.read"}, {Name: "users.write"}}

		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(2)).Return(role, nil)
		mockRole.On("ReplacePermissions", mock.Anything, role, perms).Return(nil)

		mockPerm := new(MockPermissionRepository)
		mockPerm.On("FindByNames", mock.Anything, []string{"users.read", "users.write"}).Return(perms, nil)

		a := NewAuthorizer(mockRole, mockPerm, new(MockUserRepository), nil)
		got, err := a.SetRolePermissions(context.Background(), 2, []string{"users.read", "users.write"})

		assert.NoError(t, err)
		assert.Equal(t, perms, got)
		mockRole.AssertExpectations(t)
	})
}

func TestRenameRole(t *testing.T) {
	t.Run("system role cannot be renamed", func(t *testing.T) {
		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(1)).Return(&model.Role{Name: "user", IsSystem: true}, nil)

		a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
		_, err := a.RenameRole(context.Background(), 1, "members")

		assert.ErrorIs(t, err, errors.ErrCannotModifySystemRole)
	})

	t.Run("duplicate name fails validation", func(t *testing.T) {
		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{Name: "editor"}, nil)
		mockRole.On("Update", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

		a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
		_, err := a.RenameRole(context.Background(), 2, "admin")

		var verrs *errors.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestDeleteRole(t *testing.T) {
	t.Run("system role cannot be deleted", func(t *testing.T) {
		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(1)).Return(&model.Role{Name: "admin", IsSystem: true}, nil)

		a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
		err := a.DeleteRole(context.Background(), 1)

		assert.ErrorIs(t, err, errors.ErrCannotModifySystemRole)
		mockRole.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing role", func(t *testing.T) {
		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

		a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
		assert.ErrorIs(t, a.DeleteRole(context.Background(), 9), errors.ErrNotFound)
	})

	t.Run("regular role is deleted", func(t *testing.T) {
		mockRole := new(MockRoleRepository)
		mockRole.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{Name: "editor"}, nil)
		mockRole.On("Delete", mock.Anything, uint(2)).Return(nil)

		a := NewAuthorizer(mockRole, new(MockPermissionRepository), new(MockUserRepository), nil)
		assert.NoError(t, a.DeleteRole(context.Background(), 2))
		mockRole.AssertExpectations(t)
	})
}
