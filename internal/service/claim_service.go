package service

import (
	"context"

	"gorm.io/gorm"

	"blockfunders/internal/chain"
	"blockfunders/internal/errors"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

// ClaimService handles NFT reward claims. Claims are strictly per-user:
// ownership is an equality check against the acting principal, separate
// from the role/permission system.
type ClaimService interface {
	ListMine(ctx context.Context, userID uint, opts repository.ListOptions) ([]model.Claim, int64, error)
	GetMine(ctx context.Context, userID, claimID uint) (*model.Claim, error)
	Claim(ctx context.Context, userID, claimID uint, txHash string) (*model.Claim, error)
}

type claimService struct {
	claimRepo repository.ClaimRepository
}

// NewClaimService creates a new claim service.
func NewClaimService(claimRepo repository.ClaimRepository) ClaimService {
	return &claimService{claimRepo: claimRepo}
}

func (s *claimService) ListMine(ctx context.Context, userID uint, opts repository.ListOptions) ([]model.Claim, int64, error) {
	return s.claimRepo.ListByUser(ctx, userID, opts)
}

func (s *claimService) GetMine(ctx context.Context, userID, claimID uint) (*model.Claim, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	if claim.UserID != userID {
		return nil, errors.ErrForbidden
	}
	return claim, nil
}

// Claim records the mint transaction and transitions pending -> claimed,
// exactly once. A hash already recorded anywhere fails validation; a
// claim already fulfilled stays untouched.
func (s *claimService) Claim(ctx context.Context, userID, claimID uint, txHash string) (*model.Claim, error) {
	claim, err := s.GetMine(ctx, userID, claimID)
	if err != nil {
		return nil, err
	}
	if !chain.ValidTxHash(txHash) {
		return nil, errors.ErrInvalidTxHash
	}
	if claim.Status == model.ClaimStatusClaimed {
		return nil, errors.ErrAlreadyClaimed
	}

	hash := chain.Normalize(txHash)
	affected, err := s.claimRepo.MarkClaimed(ctx, claimID, hash, chain.ExplorerLink(txHash))
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrTxHashUsed
		}
		return nil, err
	}
	if affected == 0 {
		// Lost the race to a concurrent claim of the same row.
		return nil, errors.ErrAlreadyClaimed
	}
	return s.claimRepo.FindByID(ctx, claimID)
}
