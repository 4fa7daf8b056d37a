package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

var BookingStatuses = []string{
	BookingStatusPending, BookingStatusApproved, BookingStatusRejected,
	BookingStatusCancelled, BookingStatusCompleted,
}

type Booking struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PropertyID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"property_id"`
	RoomID         *uuid.UUID `gorm:"type:uuid;index" json:"room_id,omitempty"`
	BedID          *uuid.UUID `gorm:"type:uuid;index" json:"bed_id,omitempty"`
	MoveInDate     time.Time  `gorm:"type:date;not null" json:"move_in_date"`
	DurationMonths int        `gorm:"not null;default:1" json:"duration_months"`
	TotalPrice     *float64   `gorm:"type:decimal(12,2)" json:"total_price"`
	Status         string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes          string     `gorm:"size:1000" json:"notes,omitempty"`
	DecisionReason string     `gorm:"size:1000" json:"decision_reason,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Tenant         *User      `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Property       *Property  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
	Room           *Room      `gorm:"foreignKey:RoomID;constraint:OnDelete:SET NULL" json:"room,omitempty"`
	Bed            *Bed       `gorm:"foreignKey:BedID;constraint:OnDelete:SET NULL" json:"bed,omitempty"`
}

// IsActive reports whether the booking still holds its bed.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusApproved
}

// CountsAsRevenue reports whether the booking contributes to revenue totals.
func (b *Booking) CountsAsRevenue() bool {
	return b.Status == BookingStatusApproved || b.Status == BookingStatusCompleted
}

func IsValidBookingStatus(status string) bool {
	return indexOf(BookingStatuses, status) >= 0
}
