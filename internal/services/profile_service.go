package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("landlord profile not found")

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Resolve finds the landlord profile for user, trying user_id first and then
// the email address. A profile found by email that is not yet linked gets
// the user's ID. When create is set and nothing matches, a new profile is
// inserted; losing a concurrent insert race falls back to a lookup.
func (s *ProfileService) Resolve(user *models.User, create bool) (*models.LandlordProfile, error) {
	profile, err := s.lookup(user)
	if err == nil || !errors.Is(err, ErrProfileNotFound) || !create {
		return profile, err
	}

	profile = &models.LandlordProfile{
		ID:                 uuid.New(),
		UserID:             &user.ID,
		Email:              normalizeEmail(user.Email),
		BusinessName:       user.FullName,
		ContactNumber:      user.Phone,
		VerificationStatus: models.ProfileUnverified,
	}
	if err := s.db.Create(profile).Error; err != nil {
		if IsUniqueViolation(err) {
			return s.lookup(user)
		}
		return nil, fmt.Errorf("failed to create landlord profile: %w", err)
	}
	slog.Info("landlord profile created", "user_id", user.ID, "profile_id", profile.ID)
	return profile, nil
}

func (s *ProfileService) lookup(user *models.User) (*models.LandlordProfile, error) {
	var profile models.LandlordProfile
	err := s.db.Where("user_id = ?", user.ID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = s.db.Where("email = ?", normalizeEmail(user.Email)).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	if profile.UserID == nil {
		if err := s.db.Model(&profile).Update("user_id", user.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to link landlord profile: %w", err)
		}
		profile.UserID = &user.ID
		slog.Info("landlord profile linked by email", "user_id", user.ID, "profile_id", profile.ID)
	} else if *profile.UserID != user.ID {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

// ResolveRole returns the dashboard role for user. A stored known role wins,
// so an admin demotion sticks. Rows with an empty or unknown role become
// landlords when a profile resolves for them (the row is corrected), and
// tenants otherwise.
func (s *ProfileService) ResolveRole(user *models.User) string {
	if models.IsValidRole(user.Role) {
		return user.Role
	}

	role := models.RoleTenant
	if _, err := s.lookup(user); err == nil {
		role = models.RoleLandlord
	} else if !errors.Is(err, ErrProfileNotFound) {
		slog.Warn("landlord profile lookup failed", "user_id", user.ID, "error", err)
		return role
	}
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		slog.Warn("failed to store resolved role", "user_id", user.ID, "role", role, "error", err)
	}
	user.Role = role
	return role
}

type UpdateProfileInput struct {
	BusinessName  *string `json:"business_name"`
	ContactNumber *string `json:"contact_number"`
	Address       *string `json:"address"`
}

func (s *ProfileService) Update(user *models.User, in UpdateProfileInput) (*models.LandlordProfile, error) {
	profile, err := s.Resolve(user, true)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.BusinessName != nil {
		updates["business_name"] = *in.BusinessName
	}
	if in.ContactNumber != nil {
		updates["contact_number"] = *in.ContactNumber
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update landlord profile: %w", err)
		}
	}
	return profile, nil
}
