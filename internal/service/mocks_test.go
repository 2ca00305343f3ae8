package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

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

// MockCampaignRepository is a mock implementation of CampaignRepository.
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *model.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCampaignRepository) FindByID(ctx context.Context, id uint) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) List(ctx context.Context, filter repository.CampaignListFilter, opts repository.ListOptions) ([]model.Campaign, int64, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Campaign), args.Get(1).(int64), args.Error(2)
}

func (m *MockCampaignRepository) Publish(ctx context.Context, campaignID uint, auditTx *model.FundingTransaction) error {
	args := m.Called(ctx, campaignID, auditTx)
	return args.Error(0)
}

func (m *MockCampaignRepository) Fund(ctx context.Context, campaignID uint, fundingTx *model.FundingTransaction) error {
	args := m.Called(ctx, campaignID, fundingTx)
	return args.Error(0)
}

func (m *MockCampaignRepository) AddUpdate(ctx context.Context, update *model.CampaignUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockCampaignRepository) ListIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *model.CampaignCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *model.CampaignCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uint) (*model.CampaignCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CampaignCategory), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, search string, opts repository.ListOptions) ([]model.CampaignCategory, int64, error) {
	args := m.Called(ctx, search, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.CampaignCategory), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) CountCampaigns(ctx context.Context, categoryID uint) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// MockClaimRepository is a mock implementation of ClaimRepository.
type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *model.Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) FindByID(ctx context.Context, id uint) (*model.Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Claim), args.Error(1)
}

func (m *MockClaimRepository) ListByUser(ctx context.Context, userID uint, opts repository.ListOptions) ([]model.Claim, int64, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Claim), args.Get(1).(int64), args.Error(2)
}

func (m *MockClaimRepository) MarkClaimed(ctx context.Context, id uint, txHash, link string) (int64, error) {
	args := m.Called(ctx, id, txHash, link)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, username, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) TokenVersion(ctx context.Context, userID uint) (int64, bool) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Bool(1)
}

func (m *MockTokenStore) BumpTokenVersion(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// recordingDispatcher captures reward dispatches for assertions.
type recordingDispatcher struct {
	calls []dispatchCall
}

type dispatchCall struct {
	userID     uint
	campaignID uint
	amount     decimal.Decimal
}

func (d *recordingDispatcher) Dispatch(userID, campaignID uint, amount decimal.Decimal) {
	d.calls = append(d.calls, dispatchCall{userID: userID, campaignID: campaignID, amount: amount})
}
