package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"

	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User is an account in app_users. Role decides which dashboard it reaches.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email           string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password        string     `gorm:"not null" json:"-"`
	FullName        string     `gorm:"size:255" json:"full_name"`
	Phone           string     `gorm:"size:50" json:"phone"`
	Role            string     `gorm:"size:20;not null;default:'tenant';index" json:"role"`
	Status          string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	EmailVerified   bool       `gorm:"default:false" json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "app_users"
}

// IsValidRole reports whether role is one of the three known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}
