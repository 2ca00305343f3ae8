package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"blockfunders/internal/errors"
	"blockfunders/internal/model"
)

func testClaim(id, ownerID uint, status model.ClaimStatus) *model.Claim {
	claim := &model.Claim{UserID: ownerID, Status: status}
	claim.ID = id
	return claim
}

func TestClaimService_GetMine(t *testing.T) {
	t.Run("owner reads own claim", func(t *testing.T) {
		mockRepo := new(MockClaimRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusPending), nil)

		svc := NewClaimService(mockRepo)
		claim, err := svc.GetMine(context.Background(), 7, 3)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), claim.UserID)
	})

	t.Run("someone else's claim", func(t *testing.T) {
		mockRepo := new(MockClaimRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusPending), nil)

		svc := NewClaimService(mockRepo)
		_, err := svc.GetMine(context.Background(), 99, 3)

		assert.ErrorIs(t, err, errors.ErrForbidden)
	})

	t.Run("missing claim", func(t *testing.T) {
		mockRepo := new(MockClaimRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewClaimService(mockRepo)
		_, err := svc.GetMine(context.Background(), 7, 3)

		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}

func TestClaimService_Claim(t *testing.T) {
	tests := []struct {
		name          string
		txHash        string
		setupMock     func(*MockClaimRepository)
		expectedError error
	}{
		{
			name:   "pending claim is fulfilled",
			txHash: validHash,
			setupMock: func(m *MockClaimRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusPending), nil).Once()
				m.On("MarkClaimed", mock.Anything, uint(3), validHash, mock.Anything).Return(int64(1), nil)
				m.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusClaimed), nil).Once()
			},
		},
		{
			name:   "invalid hash",
			txHash: "0x123",
			setupMock: func(m *MockClaimRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusPending), nil)
			},
			expectedError: errors.ErrInvalidTxHash,
		},
		{
			name:   "already fulfilled",
			txHash: validHash,
			setupMock: func(m *MockClaimRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusClaimed), nil)
			},
			expectedError: errors.ErrAlreadyClaimed,
		},
		{
			name:   "lost race to concurrent claim",
			txHash: validHash,
			setupMock: func(m *MockClaimRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusPending), nil)
				m.On("MarkClaimed", mock.Anything, uint(3), validHash, mock.Anything).Return(int64(0), nil)
			},
			expectedError: errors.ErrAlreadyClaimed,
		},
		{
			name:   "hash recorded elsewhere",
			txHash: validHash,
			setupMock: func(m *MockClaimRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(testClaim(3, 7, model.ClaimStatusPending), nil)
				m.On("MarkClaimed", mock.Anything, uint(3), validHash, mock.Anything).Return(int64(0), gorm.ErrDuplicatedKey)
			},
			expectedError: errors.ErrTxHashUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockClaimRepository)
			tt.setupMock(mockRepo)

			svc := NewClaimService(mockRepo)
			claim, err := svc.Claim(context.Background(), 7, 3, tt.txHash)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, claim)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, model.ClaimStatusClaimed, claim.Status)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
