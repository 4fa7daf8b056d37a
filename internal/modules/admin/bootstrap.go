package admin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdmin promotes the account with email to admin, creating a
// verified one with password when none exists. created reports which.
func EnsureAdmin(db *gorm.DB, email, password string) (user *models.User, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, false, services.ErrInvalidEmail
	}

	var existing models.User
	err = db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Model(&existing).Updates(map[string]interface{}{
			"role":   models.RoleAdmin,
			"status": models.UserStatusActive,
		}).Error; err != nil {
			return nil, false, fmt.Errorf("failed to promote user: %w", err)
		}
		existing.Role = models.RoleAdmin
		existing.Status = models.UserStatusActive
		return &existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	if len(password) < 8 {
		return nil, false, services.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	user = &models.User{
		ID:              uuid.New(),
		Email:           email,
		Password:        string(hash),
		FullName:        "Administrator",
		Role:            models.RoleAdmin,
		Status:          models.UserStatusActive,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, true, nil
}
