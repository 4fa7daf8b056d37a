package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PropertyStatusPending  = "pending"
	PropertyStatusApproved = "approved"
	PropertyStatusRejected = "rejected"
	PropertyStatusArchived = "archived"

	RoomStatusAvailable   = "available"
	RoomStatusFull        = "full"
	RoomStatusMaintenance = "maintenance"

	BedStatusAvailable = "available"
	BedStatusReserved  = "reserved"
	BedStatusOccupied  = "occupied"
)

var PropertyTypes = []string{"boarding_house", "apartment", "dormitory", "house"}
var GenderPolicies = []string{"any", "male", "female"}

// ImageCategories is also the precedence order used to pick a cover image.
var ImageCategories = []string{"cover", "exterior", "room", "bathroom", "kitchen", "common_area", "other"}

type Property struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LandlordID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"landlord_id"`
	Title           string          `gorm:"size:200;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Address         string          `gorm:"size:500" json:"address"`
	City            string          `gorm:"size:100;index" json:"city"`
	Province        string          `gorm:"size:100" json:"province"`
	PropertyType    string          `gorm:"size:30;not null;default:'boarding_house'" json:"property_type"`
	GenderPolicy    string          `gorm:"size:10;not null;default:'any'" json:"gender_policy"`
	Price           float64         `gorm:"type:decimal(12,2);default:0" json:"price"`
	Amenities       datatypes.JSON  `gorm:"type:jsonb;default:'[]'" json:"amenities"`
	Status          string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason string          `gorm:"size:1000" json:"rejection_reason,omitempty"`
	AvgRating       float64         `gorm:"type:decimal(3,2);default:0" json:"avg_rating"`
	ReviewCount     int             `gorm:"default:0" json:"review_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Landlord        *User           `gorm:"foreignKey:LandlordID" json:"landlord,omitempty"`
	Rooms           []Room          `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
	Images          []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CoverURL        string          `gorm:"-" json:"cover_url"`
}

type Room struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Capacity   int       `gorm:"default:1" json:"capacity"`
	Price      float64   `gorm:"type:decimal(12,2);default:0" json:"price"`
	Status     string    `gorm:"size:20;not null;default:'available'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Beds       []Bed     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"beds,omitempty"`
}

type Bed struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID    uuid.UUID `gorm:"type:uuid;not null;index" json:"room_id"`
	Label     string    `gorm:"size:50;not null" json:"label"`
	Price     float64   `gorm:"type:decimal(12,2);default:0" json:"price"`
	Status    string    `gorm:"size:20;not null;default:'available';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PropertyImage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	Category   string    `gorm:"size:30;not null;default:'other'" json:"category"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	StorageKey string    `gorm:"size:500" json:"-"`
	SortOrder  int       `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

func IsValidImageCategory(category string) bool {
	return indexOf(ImageCategories, category) >= 0
}

func IsValidPropertyType(t string) bool {
	return indexOf(PropertyTypes, t) >= 0
}

func IsValidGenderPolicy(g string) bool {
	return indexOf(GenderPolicies, g) >= 0
}

// CoverImageURL picks the first image by category precedence, then sort
// order. Returns fallback when there are no images.
func CoverImageURL(images []PropertyImage, fallback string) string {
	best := -1
	bestRank, bestOrder := len(ImageCategories), 0
	for i, img := range images {
		rank := indexOf(ImageCategories, img.Category)
		if rank < 0 {
			rank = len(ImageCategories) - 1
		}
		if best < 0 || rank < bestRank || (rank == bestRank && img.SortOrder < bestOrder) {
			best, bestRank, bestOrder = i, rank, img.SortOrder
		}
	}
	if best < 0 || images[best].URL == "" {
		return fallback
	}
	return images[best].URL
}

func indexOf(list []string, val string) int {
	for i, item := range list {
		if item == val {
			return i
		}
	}
	return -1
}
