package model

import (
	"encoding/json"
	"time"
)

// ClaimStatus represents the state of an NFT reward claim.
type ClaimStatus string

const (
	ClaimStatusPending ClaimStatus = "pending"
	ClaimStatusClaimed ClaimStatus = "claimed"
)

// Claim is a user's NFT reward record, created by the reward generator
// after a qualifying donation. TxHash is nullable until the user mints;
// the unique index on it makes the pending -> claimed transition happen
// exactly once.
type Claim struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"user_id" gorm:"not null;index"`
	Status    ClaimStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	TxHash    *string         `json:"tx_hash,omitempty" gorm:"uniqueIndex;size:80"`
	Link      string          `json:"link,omitempty" gorm:"size:512"`
	Metadata  json.RawMessage `json:"metadata,omitempty" gorm:"type:json"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}
