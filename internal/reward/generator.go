package reward

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"blockfunders/internal/model"
	"blockfunders/internal/repository"
	"blockfunders/internal/storage"
)

// Generator runs the two-stage reward pipeline: structured NFT metadata
// from the chat endpoint, then an image derived from its attributes. A
// stage exhausting its retries fails the whole job; no claim is created
// and the funding that triggered it is unaffected.
type Generator struct {
	metadata MetadataGenerator
	images   ImageGenerator
	userRepo repository.UserRepository
	campRepo repository.CampaignRepository
	txRepo   repository.TransactionRepository
	claims   repository.ClaimRepository
	files    *storage.FileStore
}

// NewGenerator creates the reward pipeline.
func NewGenerator(
	metadata MetadataGenerator,
	images ImageGenerator,
	userRepo repository.UserRepository,
	campRepo repository.CampaignRepository,
	txRepo repository.TransactionRepository,
	claims repository.ClaimRepository,
	files *storage.FileStore,
) *Generator {
	return &Generator{
		metadata: metadata,
		images:   images,
		userRepo: userRepo,
		campRepo: campRepo,
		txRepo:   txRepo,
		claims:   claims,
		files:    files,
	}
}

// GenerateReward produces the NFT for a donation and records it as a
// pending claim. No store transaction is held across the external calls.
func (g *Generator) GenerateReward(ctx context.Context, userID, campaignID uint, amount decimal.Decimal) (*model.Claim, error) {
	user, err := g.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	campaign, err := g.campRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	lifetime, err := g.txRepo.SumByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum donations: %w", err)
	}

	meta, err := g.metadata.GenerateMetadata(ctx, buildPrompt(user, campaign, amount, lifetime))
	if err != nil {
		return nil, fmt.Errorf("metadata stage: %w", err)
	}

	imageBytes, err := g.images.GenerateImage(ctx, imagePrompt(meta))
	if err != nil {
		return nil, fmt.Errorf("image stage: %w", err)
	}

	imageURL, err := g.files.Save(imageBytes, "nfts", ".png")
	if err != nil {
		return nil, fmt.Errorf("store nft image: %w", err)
	}
	meta.Image = imageURL

	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	claim := &model.Claim{
		UserID:   userID,
		Status:   model.ClaimStatusPending,
		Metadata: payload,
	}
	if err := g.claims.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}
	return claim, nil
}

func buildPrompt(user *model.User, campaign *model.Campaign, amount, lifetime decimal.Decimal) string {
	return fmt.Sprintf(`BlockFunders aims to revolutionize the crowdfunding industry by providing a transparent, secure,
and globally accessible platform for funding innovative projects using cryptocurrency.
In BlockFunders we reward our funders for supporting other projects with NFTs.
### Your task is to generate an NFT with metadata, and you will be provided the following information about the funder and the campaign being funded to create the NFT.
User Name: %s
Campaign Name: %s
Campaign Description: %s.
Campaign Target Amount: %s ETH
User's Donated Amount: %s ETH
User's Overall Donated Amount: %s ETH
Give me only a JSON as a response to this question that contains the following metadata about the NFT and don't create anything on your own.
dna, name, description (make it short and creative), image and a list of attributes that has no more than 6 attributes,
each attribute should have a trait_type and a color and trait_value`,
		user.Username,
		campaign.Title,
		campaign.Description,
		campaign.TargetAmount.String(),
		amount.String(),
		lifetime.String(),
	)
}

// imagePrompt derives the image-stage prompt from the metadata stage's
// attributes.
func imagePrompt(meta *NftMetadata) string {
	var sb strings.Builder
	sb.WriteString("A digital NFT artwork named ")
	sb.WriteString(meta.Name)
	sb.WriteString(". ")
	sb.WriteString(meta.Description)
	if len(meta.Attributes) > 0 {
		sb.WriteString(" Featuring: ")
		for i, attr := range meta.Attributes {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(attr.Color)
			sb.WriteString(" ")
			sb.WriteString(attr.TraitValue)
			sb.WriteString(" ")
			sb.WriteString(attr.TraitType)
		}
		sb.WriteString(".")
	}
	return sb.String()
}
