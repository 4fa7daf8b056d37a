package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReviewStatusVisible = "visible"
	ReviewStatusHidden  = "hidden"
)

type Review struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropertyID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_property_tenant,priority:1;index" json:"property_id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_property_tenant,priority:2" json:"tenant_id"`
	BookingID  *uuid.UUID `gorm:"type:uuid" json:"booking_id,omitempty"`
	Rating     int        `gorm:"not null" json:"rating"`
	Comment    string     `gorm:"type:text" json:"comment"`
	Status     string     `gorm:"size:20;not null;default:'visible';index" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Tenant     *User      `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Property   *Property  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
}
