package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"blockfunders/internal/chain"
	"blockfunders/internal/errors"
	"blockfunders/internal/logger"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
	"blockfunders/internal/storage"
)

// RewardDispatcher hands a qualifying donation to the reward generator.
// Dispatch must never block the funding flow; implementations run the
// work off the request path.
type RewardDispatcher interface {
	Dispatch(userID, campaignID uint, amount decimal.Decimal)
}

// CampaignInput carries campaign creation fields.
type CampaignInput struct {
	Title        string
	Description  string
	CategoryID   uint
	TargetAmount decimal.Decimal
	Deadline     time.Time
	Image        []byte
	ImageExt     string
}

// CampaignService handles the campaign lifecycle: draft creation,
// publishing and funding against on-chain transaction hashes.
type CampaignService interface {
	List(ctx context.Context, filter repository.CampaignListFilter, opts repository.ListOptions) ([]model.Campaign, int64, error)
	Get(ctx context.Context, id uint) (*model.Campaign, error)
	Create(ctx context.Context, userID uint, in CampaignInput) (*model.Campaign, error)
	Publish(ctx context.Context, userID, campaignID uint, txHash string) (*model.Campaign, error)
	Fund(ctx context.Context, userID, campaignID uint, amount decimal.Decimal, txHash string) (*model.Campaign, error)
	Delete(ctx context.Context, id uint) error
	AddUpdate(ctx context.Context, userID, campaignID uint, content string) (*model.CampaignUpdate, error)
}

type campaignService struct {
	campaignRepo repository.CampaignRepository
	categoryRepo repository.CategoryRepository
	files        *storage.FileStore
	rewards      RewardDispatcher
}

// NewCampaignService creates a new campaign service. rewards may be nil,
// in which case funding simply never produces a claim.
func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	categoryRepo repository.CategoryRepository,
	files *storage.FileStore,
	rewards RewardDispatcher,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		categoryRepo: categoryRepo,
		files:        files,
		rewards:      rewards,
	}
}

func (s *campaignService) List(ctx context.Context, filter repository.CampaignListFilter, opts repository.ListOptions) ([]model.Campaign, int64, error) {
	return s.campaignRepo.List(ctx, filter, opts)
}

func (s *campaignService) Get(ctx context.Context, id uint) (*model.Campaign, error) {
	campaign, err := s.campaignRepo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	return campaign, nil
}

// Create stores a new draft campaign. collected_amount starts at zero and
// is never writable by callers.
func (s *campaignService) Create(ctx context.Context, userID uint, in CampaignInput) (*model.Campaign, error) {
	if in.TargetAmount.IsNegative() {
		return nil, errors.NewValidation("target_amount", "must not be negative")
	}
	if _, err := s.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		return nil, errors.NewValidation("category_id", "category does not exist")
	}

	campaign := &model.Campaign{
		UserID:          userID,
		Title:           in.Title,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		TargetAmount:    in.TargetAmount,
		CollectedAmount: decimal.Zero,
		Status:          model.CampaignStatusDraft,
		Deadline:        in.Deadline,
	}

	if len(in.Image) > 0 {
		url, err := s.files.Save(in.Image, "campaigns", in.ImageExt)
		if err != nil {
			return nil, fmt.Errorf("store campaign image: %w", err)
		}
		campaign.Image = url
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return s.Get(ctx, campaign.ID)
}

// Publish transitions draft -> published and records the zero-amount
// audit ledger row for the on-chain creation transaction.
func (s *campaignService) Publish(ctx context.Context, userID, campaignID uint, txHash string) (*model.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	if campaign.UserID != userID {
		return nil, errors.ErrForbidden
	}
	if !chain.ValidTxHash(txHash) {
		return nil, errors.ErrInvalidTxHash
	}

	auditTx := &model.FundingTransaction{
		CampaignID: campaignID,
		UserID:     userID,
		Amount:     decimal.Zero,
		Reason:     "Creating campaign with title " + campaign.Title,
		Link:       chain.ExplorerLink(txHash),
		TxHash:     chain.Normalize(txHash),
	}

	if err := s.campaignRepo.Publish(ctx, campaignID, auditTx); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrTxHashUsed
		}
		return nil, fmt.Errorf("publish campaign: %w", err)
	}
	return s.Get(ctx, campaignID)
}

// Fund atomically appends the ledger row and increments collected_amount.
// The global unique index on tx_hash makes any on-chain event count at
// most once, no matter how many concurrent calls present the same hash.
func (s *campaignService) Fund(ctx context.Context, userID, campaignID uint, amount decimal.Decimal, txHash string) (*model.Campaign, error) {
	if amount.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}
	if !chain.ValidTxHash(txHash) {
		return nil, errors.ErrInvalidTxHash
	}

	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}

	fundingTx := &model.FundingTransaction{
		CampaignID: campaignID,
		UserID:     userID,
		Amount:     amount,
		Reason:     fmt.Sprintf("Funding %s with %s ETH", campaign.Title, amount.String()),
		Link:       chain.ExplorerLink(txHash),
		TxHash:     chain.Normalize(txHash),
	}

	if err := s.campaignRepo.Fund(ctx, campaignID, fundingTx); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrTxHashUsed
		}
		return nil, fmt.Errorf("fund campaign: %w", err)
	}

	// Reward generation runs out-of-band; its outcome never affects the
	// funding response.
	if s.rewards != nil && amount.IsPositive() {
		s.rewards.Dispatch(userID, campaignID, amount)
	}

	return s.Get(ctx, campaignID)
}

func (s *campaignService) Delete(ctx context.Context, id uint) error {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotFound
		}
		return err
	}
	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		return err
	}
	if campaign.Image != "" {
		if err := s.files.Delete(campaign.Image); err != nil {
			logger.Warn("delete campaign image %s: %v", campaign.Image, err)
		}
	}
	return nil
}

// AddUpdate appends a progress note; only the campaign owner may post.
func (s *campaignService) AddUpdate(ctx context.Context, userID, campaignID uint, content string) (*model.CampaignUpdate, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	if campaign.UserID != userID {
		return nil, errors.ErrForbidden
	}

	update := &model.CampaignUpdate{CampaignID: campaignID, Content: content}
	if err := s.campaignRepo.AddUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("add campaign update: %w", err)
	}
	return update, nil
}
