package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/modules/listings"
	"github.com/boardinghub/boardinghub-api/internal/modules/permits"
	"github.com/boardinghub/boardinghub-api/internal/modules/reviews"
	"github.com/boardinghub/boardinghub-api/internal/scopes"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSelfAction        = errors.New("you cannot change or delete your own account here")
	ErrInvalidUserStatus = errors.New("status must be active or suspended")
	ErrInvalidRole       = errors.New("role must be tenant, landlord, or admin")
	ErrPermitNotApproved = errors.New("landlord has no approved business permit")
	ErrReasonRequired    = errors.New("a rejection reason is required")
	ErrNotReviewable     = errors.New("only pending or rejected properties can be approved")
)

type UserFilter struct {
	Role   string
	Status string
	Query  string // matches email or full name
}

type Service struct {
	db            *gorm.DB
	listings      *listings.Service
	listingCache  *cache.ListingCache
	notifications *services.NotificationService
	audit         *services.AuditService
}

func NewService(db *gorm.DB, listingSvc *listings.Service, listingCache *cache.ListingCache,
	notifications *services.NotificationService, audit *services.AuditService) *Service {
	return &Service{db: db, listings: listingSvc, listingCache: listingCache, notifications: notifications, audit: audit}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Service) ListUsers(f UserFilter, limit, offset int) ([]models.User, int64, error) {
	q := s.db.Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	q = q.Scopes(scopes.WithStatus(f.Status))
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("(LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").Scopes(scopes.Paginate(limit, offset)).Find(&users).Error
	return users, total, err
}

func (s *Service) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetStatus suspends or reactivates a user. Suspension revokes every
// refresh token so the account is signed out once its access token lapses.
func (s *Service) SetStatus(adminID, userID uuid.UUID, status string) (*models.User, error) {
	if adminID == userID {
		return nil, ErrSelfAction
	}
	if status != models.UserStatusActive && status != models.UserStatusSuspended {
		return nil, ErrInvalidUserStatus
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("status", status).Error; err != nil {
			return err
		}
		if status == models.UserStatusSuspended {
			return tx.Model(&models.RefreshToken{}).
				Where("user_id = ? AND revoked = ?", userID, false).
				Update("revoked", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.Status = status

	msg := "Your account has been reactivated."
	if status == models.UserStatusSuspended {
		msg = "Your account has been suspended. Contact support for details."
	}
	s.notifications.Notify(userID, services.NotifyAccountStatus, "Account status changed", msg, "")
	s.audit.Record(adminID, "user."+status, "user", userID.String(), nil)
	return user, nil
}

func (s *Service) SetRole(adminID, userID uuid.UUID, role string) (*models.User, error) {
	if adminID == userID {
		return nil, ErrSelfAction
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	previous := user.Role
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	user.Role = role
	s.audit.Record(adminID, "user.role", "user", userID.String(), map[string]interface{}{
		"from": previous, "to": role,
	})
	return user, nil
}

// DeleteUser removes the account and refreshes ratings on the properties
// the user had reviewed.
func (s *Service) DeleteUser(ctx context.Context, adminID, userID uuid.UUID) error {
	if adminID == userID {
		return ErrSelfAction
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	var reviewed []uuid.UUID
	if err := s.db.Model(&models.Review{}).Where("tenant_id = ?", userID).
		Distinct().Pluck("property_id", &reviewed).Error; err != nil {
		return err
	}

	if err := services.RemoveUser(s.db, user); err != nil {
		return err
	}

	for _, pid := range reviewed {
		if err := reviews.Recompute(s.db, pid); err != nil {
			slog.Warn("rating recompute failed", "property_id", pid, "error", err)
		}
	}
	if len(reviewed) > 0 && s.listingCache != nil {
		s.listingCache.InvalidateAll(ctx)
	}
	s.audit.Record(adminID, "user.delete", "user", userID.String(), map[string]interface{}{
		"email": user.Email, "role": user.Role,
	})
	return nil
}

func (s *Service) ListProperties(status string, limit, offset int) ([]models.Property, int64, error) {
	q := s.db.Model(&models.Property{}).Scopes(scopes.WithStatus(status))
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.Property
	err := q.Preload("Landlord").Preload("Images").
		Order("created_at ASC").Scopes(scopes.Paginate(limit, offset)).
		Find(&items).Error
	return items, total, err
}

func (s *Service) property(id uuid.UUID) (*models.Property, error) {
	var p models.Property
	if err := s.db.Select("id", "landlord_id", "title", "status").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, listings.ErrPropertyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ApproveProperty publishes a listing. The landlord must hold an approved
// permit.
func (s *Service) ApproveProperty(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	p, err := s.property(propertyID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PropertyStatusPending && p.Status != models.PropertyStatusRejected {
		return nil, ErrNotReviewable
	}
	ok, err := permits.HasApprovedPermit(s.db, p.LandlordID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermitNotApproved
	}

	updated, err := s.listings.SetStatus(ctx, propertyID, models.PropertyStatusApproved, "")
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(p.LandlordID, services.NotifyPropertyReviewed, "Listing approved",
		fmt.Sprintf("%q is now live.", p.Title), "/landlord/properties/"+propertyID.String())
	s.audit.Record(adminID, "property.approve", "property", propertyID.String(), nil)
	return updated, nil
}

func (s *Service) RejectProperty(ctx context.Context, adminID, propertyID uuid.UUID, reason string) (*models.Property, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	p, err := s.property(propertyID)
	if err != nil {
		return nil, err
	}

	updated, err := s.listings.SetStatus(ctx, propertyID, models.PropertyStatusRejected, reason)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(p.LandlordID, services.NotifyPropertyReviewed, "Listing rejected",
		fmt.Sprintf("%q was not approved: %s", p.Title, reason), "/landlord/properties/"+propertyID.String())
	s.audit.Record(adminID, "property.reject", "property", propertyID.String(), map[string]interface{}{
		"reason": reason,
	})
	return updated, nil
}
