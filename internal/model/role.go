package model

import "time"

// Role is a named bundle of permissions assignable to users.
// The seeded "admin" and "user" roles carry IsSystem and are immutable
// through the API; the guard lives in the authz package, not in the store.
type Role struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	GuardName string    `json:"guard_name" gorm:"size:64;not null;default:'api'"`
	IsSystem  bool      `json:"is_system" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
}

// Permission is an atomic named capability, e.g. "campaigns.write".
// Names follow the resource.action convention; there is no hierarchy.
type Permission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
}
