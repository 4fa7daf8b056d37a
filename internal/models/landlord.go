package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProfileUnverified = "unverified"
	ProfilePending    = "pending"
	ProfileVerified   = "verified"
	ProfileRejected   = "rejected"

	PermitStatusPending  = "pending"
	PermitStatusApproved = "approved"
	PermitStatusRejected = "rejected"
)

// LandlordProfile can exist before its user is linked (user_id null).
type LandlordProfile struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Email              string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	BusinessName       string     `gorm:"size:255" json:"business_name"`
	ContactNumber      string     `gorm:"size:50" json:"contact_number"`
	Address            string     `gorm:"size:500" json:"address"`
	VerificationStatus string     `gorm:"size:20;not null;default:'unverified'" json:"verification_status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type LandlordPermit struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LandlordProfileID uuid.UUID        `gorm:"type:uuid;not null;index" json:"landlord_profile_id"`
	PermitType        string           `gorm:"size:50;not null" json:"permit_type"`
	PermitNumber      string           `gorm:"size:100" json:"permit_number"`
	FileURL           string           `gorm:"type:text;not null" json:"file_url"`
	StorageKey        string           `gorm:"size:500" json:"-"`
	MimeType          string           `gorm:"size:100" json:"mime_type"`
	Status            string           `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedBy        *uuid.UUID       `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time       `json:"reviewed_at,omitempty"`
	Remarks           string           `gorm:"size:1000" json:"remarks,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	LandlordProfile   *LandlordProfile `gorm:"foreignKey:LandlordProfileID;constraint:OnDelete:CASCADE" json:"landlord_profile,omitempty"`
}
