package reward

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockfunders/internal/model"
	"blockfunders/internal/repository"
	"blockfunders/internal/storage"
)

// Stubs embed the repository interfaces so only the methods the pipeline
// actually calls need implementations.

type stubUserRepo struct {
	repository.UserRepository
	user *model.User
}

func (s stubUserRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return s.user, nil
}

type stubCampaignRepo struct {
	repository.CampaignRepository
	campaign *model.Campaign
}

func (s stubCampaignRepo) FindByID(ctx context.Context, id uint) (*model.Campaign, error) {
	return s.campaign, nil
}

type stubTxRepo struct {
	repository.TransactionRepository
	lifetime decimal.Decimal
}

func (s stubTxRepo) SumByUser(ctx context.Context, userID uint) (decimal.Decimal, error) {
	return s.lifetime, nil
}

type capturingClaimRepo struct {
	repository.ClaimRepository
	created *model.Claim
}

func (s *capturingClaimRepo) Create(ctx context.Context, claim *model.Claim) error {
	s.created = claim
	return nil
}

type stubMetadata struct {
	meta *NftMetadata
	err  error
	// prompt captured for assertions
	prompt string
}

func (s *stubMetadata) GenerateMetadata(ctx context.Context, prompt string) (*NftMetadata, error) {
	s.prompt = prompt
	return s.meta, s.err
}

type stubImages struct {
	img []byte
	err error
}

func (s *stubImages) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return s.img, s.err
}

func testPipelineFixtures(t *testing.T) (*model.User, *model.Campaign, *storage.FileStore) {
	t.Helper()
	user := &model.User{Username: "satoshi"}
	user.ID = 7
	campaign := &model.Campaign{
		Title:        "Clean Water",
		Description:  "Wells for everyone",
		TargetAmount: decimal.NewFromInt(100),
	}
	campaign.ID = 1
	files, err := storage.NewFileStore(t.TempDir(), "http://localhost:8080/public")
	require.NoError(t, err)
	return user, campaign, files
}

func TestGenerator_GenerateReward(t *testing.T) {
	user, campaign, files := testPipelineFixtures(t)

	meta := &NftMetadata{
		DNA:         "dna-1",
		Name:        "Aurora Funder",
		Description: "A glowing token of support",
		Attributes:  []NftAttribute{{TraitType: "background", Color: "blue", TraitValue: "nebula"}},
	}
	metadata := &stubMetadata{meta: meta}
	claims := &capturingClaimRepo{}

	g := NewGenerator(
		metadata,
		&stubImages{img: []byte("png-bytes")},
		stubUserRepo{user: user},
		stubCampaignRepo{campaign: campaign},
		stubTxRepo{lifetime: decimal.RequireFromString("12.5")},
		claims,
		files,
	)

	claim, err := g.GenerateReward(context.Background(), 7, 1, decimal.RequireFromString("2.5"))
	require.NoError(t, err)

	assert.Equal(t, uint(7), claim.UserID)
	assert.Equal(t, model.ClaimStatusPending, claim.Status)
	assert.Same(t, claim, claims.created)

	// The metadata prompt carries the funder and campaign facts.
	assert.Contains(t, metadata.prompt, "User Name: satoshi")
	assert.Contains(t, metadata.prompt, "Campaign Name: Clean Water")
	assert.Contains(t, metadata.prompt, "User's Donated Amount: 2.5 ETH")
	assert.Contains(t, metadata.prompt, "User's Overall Donated Amount: 12.5 ETH")

	// Stored metadata points at the saved image.
	var stored NftMetadata
	require.NoError(t, json.Unmarshal(claim.Metadata, &stored))
	assert.Equal(t, "Aurora Funder", stored.Name)
	assert.Contains(t, stored.Image, "/nfts/")
}

func TestGenerator_MetadataFailureCreatesNoClaim(t *testing.T) {
	user, campaign, files := testPipelineFixtures(t)
	claims := &capturingClaimRepo{}

	g := NewGenerator(
		&stubMetadata{err: fmt.Errorf("exhausted retries")},
		&stubImages{},
		stubUserRepo{user: user},
		stubCampaignRepo{campaign: campaign},
		stubTxRepo{},
		claims,
		files,
	)

	_, err := g.GenerateReward(context.Background(), 7, 1, decimal.NewFromInt(1))
	assert.Error(t, err)
	assert.Nil(t, claims.created)
}

func TestGenerator_ImageFailureCreatesNoClaim(t *testing.T) {
	user, campaign, files := testPipelineFixtures(t)
	claims := &capturingClaimRepo{}

	g := NewGenerator(
		&stubMetadata{meta: &NftMetadata{Name: "X"}},
		&stubImages{err: fmt.Errorf("exhausted retries")},
		stubUserRepo{user: user},
		stubCampaignRepo{campaign: campaign},
		stubTxRepo{},
		claims,
		files,
	)

	_, err := g.GenerateReward(context.Background(), 7, 1, decimal.NewFromInt(1))
	assert.Error(t, err)
	assert.Nil(t, claims.created)
}

func TestImagePrompt(t *testing.T) {
	meta := &NftMetadata{
		Name:        "Aurora Funder",
		Description: "A glowing token.",
		Attributes: []NftAttribute{
			{TraitType: "background", Color: "blue", TraitValue: "nebula"},
			{TraitType: "frame", Color: "gold", TraitValue: "laurel"},
		},
	}
	prompt := imagePrompt(meta)
	assert.Contains(t, prompt, "Aurora Funder")
	assert.Contains(t, prompt, "blue nebula background")
	assert.Contains(t, prompt, "gold laurel frame")
}
