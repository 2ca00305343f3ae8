package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingTransaction is one row of the append-only funding ledger. TxHash
// carries the on-chain transaction hash and is globally unique, which is
// what makes any given on-chain event processable at most once.
type FundingTransaction struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	CampaignID uint            `json:"campaign_id" gorm:"not null;index"`
	UserID     uint            `json:"user_id" gorm:"not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Reason     string          `json:"reason" gorm:"size:512"`
	Link       string          `json:"link" gorm:"size:512"`
	TxHash     string          `json:"tx_hash" gorm:"uniqueIndex;size:80;not null"`
	CreatedAt  time.Time       `json:"created_at"`

	// Relations
	Campaign Campaign `json:"-" gorm:"foreignKey:CampaignID"`
	User     User     `json:"-" gorm:"foreignKey:UserID"`
}
