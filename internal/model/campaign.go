package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusPublished CampaignStatus = "published"
)

// Campaign represents a crowdfunding campaign. CollectedAmount is only
// ever moved by funding transactions; it always equals the sum of the
// campaign's ledger rows.
type Campaign struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	Title           string          `json:"title" gorm:"size:255;not null;index"`
	Description     string          `json:"description" gorm:"type:text;not null"`
	CategoryID      uint            `json:"category_id" gorm:"not null;index"`
	TargetAmount    decimal.Decimal `json:"target_amount" gorm:"type:decimal(20,2);not null"`
	CollectedAmount decimal.Decimal `json:"collected_amount" gorm:"type:decimal(20,2);not null;default:0"`
	Status          CampaignStatus  `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	Deadline        time.Time       `json:"deadline" gorm:"not null"`
	Image           string          `json:"image,omitempty" gorm:"size:512"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	User         User                 `json:"-" gorm:"foreignKey:UserID"`
	Category     CampaignCategory     `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Updates      []CampaignUpdate     `json:"updates,omitempty" gorm:"foreignKey:CampaignID"`
	Transactions []FundingTransaction `json:"transactions,omitempty" gorm:"foreignKey:CampaignID"`
}

// CampaignCategory groups campaigns. Deletion is refused while campaigns
// still reference the category.
type CampaignCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CampaignUpdate is an append-only progress note on a campaign.
type CampaignUpdate struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CampaignID uint      `json:"campaign_id" gorm:"not null;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
}
