// Package scopes holds reusable GORM query scopes.
package scopes

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForLandlord filters rows by landlord_id.
func ForLandlord(landlordID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("landlord_id = ?", landlordID)
	}
}

// ForTenant filters rows by tenant_id.
func ForTenant(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// WithStatus filters by status when status is non-empty.
func WithStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

func Paginate(limit, offset int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}

// LandlordBookings restricts bookings to properties owned by landlordID.
func LandlordBookings(landlordID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("property_id IN (SELECT id FROM properties WHERE landlord_id = ?)", landlordID)
	}
}
