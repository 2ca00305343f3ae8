package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered platform user.
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Username       string         `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Email          string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName      string         `json:"first_name" gorm:"size:255;not null"`
	LastName       string         `json:"last_name" gorm:"size:255;not null"`
	ProfilePicture string         `json:"profile_picture,omitempty" gorm:"size:512"`
	Verified       bool           `json:"verified" gorm:"default:false"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Roles        []Role               `json:"roles,omitempty" gorm:"many2many:user_roles"`
	Transactions []FundingTransaction `json:"transactions,omitempty" gorm:"foreignKey:UserID"`
}
