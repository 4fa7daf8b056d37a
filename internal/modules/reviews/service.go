package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/pricing"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrNotEligible      = errors.New("you can only review properties you have an approved or completed booking for")
	ErrAlreadyReviewed  = errors.New("you have already reviewed this property")
	ErrContentRejected  = errors.New("review rejected by content filter")
	ErrInvalidStatus    = errors.New("status must be visible or hidden")
	ErrPropertyNotFound = errors.New("property not found")
)

// RejectedError carries the user-facing reason a comment was refused.
type RejectedError struct {
	Reason  string
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Is(target error) bool { return target == ErrContentRejected }

type Service struct {
	db            *gorm.DB
	moderation    *services.ModerationService
	notifications *services.NotificationService
	audit         *services.AuditService
	listings      *cache.ListingCache
}

func NewService(db *gorm.DB, moderation *services.ModerationService, notifications *services.NotificationService,
	audit *services.AuditService, listings *cache.ListingCache) *Service {
	return &Service{db: db, moderation: moderation, notifications: notifications, audit: audit, listings: listings}
}

type CreateInput struct {
	PropertyID uuid.UUID `json:"property_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
}

type UpdateInput struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (s *Service) checkComment(comment string) error {
	if s.moderation == nil || comment == "" {
		return nil
	}
	if ok, reason := s.moderation.FilterContent(comment); !ok {
		return &RejectedError{Reason: reason, Message: s.moderation.GetRejectionMessage(reason)}
	}
	return nil
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in *CreateInput) (*models.Review, error) {
	if !validRating(in.Rating) {
		return nil, ErrInvalidRating
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if err := s.checkComment(in.Comment); err != nil {
		return nil, err
	}

	var property models.Property
	if err := s.db.Select("id", "landlord_id", "title").First(&property, "id = ?", in.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	var booking models.Booking
	err := s.db.Where("tenant_id = ? AND property_id = ? AND status IN ?", tenantID, in.PropertyID,
		[]string{models.BookingStatusApproved, models.BookingStatusCompleted}).
		Order("created_at DESC").First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEligible
	}
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.Model(&models.Review{}).Where("tenant_id = ? AND property_id = ?", tenantID, in.PropertyID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyReviewed
	}

	review := models.Review{
		ID:         uuid.New(),
		PropertyID: in.PropertyID,
		TenantID:   tenantID,
		BookingID:  &booking.ID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		Status:     models.ReviewStatusVisible,
	}
	if err := s.db.Create(&review).Error; err != nil {
		if services.IsUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	s.refresh(ctx, in.PropertyID)

	s.notifications.Notify(property.LandlordID, services.NotifyReviewPosted,
		"New review", fmt.Sprintf("%s received a %d-star review.", property.Title, in.Rating),
		"/landlord/properties/"+property.ID.String())
	return &review, nil
}

// refresh recomputes the property's visible rating and drops cached search
// pages, which sort by rating.
func (s *Service) refresh(ctx context.Context, propertyID uuid.UUID) {
	if err := Recompute(s.db, propertyID); err != nil {
		slog.Warn("rating recompute failed", "property_id", propertyID, "error", err)
	}
	if s.listings != nil {
		s.listings.InvalidateAll(ctx)
	}
}

// Recompute stores the average rating and count of visible reviews on the
// property.
func Recompute(db *gorm.DB, propertyID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int
	}
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("property_id = ? AND status = ?", propertyID, models.ReviewStatusVisible).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return db.Model(&models.Property{}).Where("id = ?", propertyID).Updates(map[string]interface{}{
		"avg_rating":   pricing.Round2(agg.Avg),
		"review_count": agg.Count,
	}).Error
}

func (s *Service) ListForProperty(propertyID uuid.UUID, limit, offset int) ([]models.Review, int64, error) {
	var items []models.Review
	var total int64

	query := s.db.Model(&models.Review{}).Where("property_id = ? AND status = ?", propertyID, models.ReviewStatusVisible)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Tenant", func(db *gorm.DB) *gorm.DB { return db.Select("id", "full_name") }).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (s *Service) own(tenantID, reviewID uuid.UUID) (*models.Review, error) {
	var r models.Review
	err := s.db.Where("tenant_id = ?", tenantID).First(&r, "id = ?", reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	return &r, err
}

func (s *Service) Update(ctx context.Context, tenantID, reviewID uuid.UUID, in *UpdateInput) (*models.Review, error) {
	r, err := s.own(tenantID, reviewID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Rating != nil {
		if !validRating(*in.Rating) {
			return nil, ErrInvalidRating
		}
		updates["rating"] = *in.Rating
		r.Rating = *in.Rating
	}
	if in.Comment != nil {
		comment := strings.TrimSpace(*in.Comment)
		if err := s.checkComment(comment); err != nil {
			return nil, err
		}
		updates["comment"] = comment
		r.Comment = comment
	}
	if len(updates) == 0 {
		return r, nil
	}
	if err := s.db.Model(&models.Review{}).Where("id = ?", r.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	s.refresh(ctx, r.PropertyID)
	return r, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, reviewID uuid.UUID) error {
	r, err := s.own(tenantID, reviewID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(r).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	s.refresh(ctx, r.PropertyID)
	return nil
}

// --- admin ---

func (s *Service) List(status string, propertyID *uuid.UUID, limit, offset int) ([]models.Review, int64, error) {
	if status != "" && status != models.ReviewStatusVisible && status != models.ReviewStatusHidden {
		return nil, 0, ErrInvalidStatus
	}
	var items []models.Review
	var total int64

	query := s.db.Model(&models.Review{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if propertyID != nil {
		query = query.Where("property_id = ?", *propertyID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Tenant").Preload("Property", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "title", "landlord_id")
	}).Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (s *Service) find(reviewID uuid.UUID) (*models.Review, error) {
	var r models.Review
	err := s.db.First(&r, "id = ?", reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	return &r, err
}

func (s *Service) SetStatus(ctx context.Context, adminID, reviewID uuid.UUID, status string) (*models.Review, error) {
	if status != models.ReviewStatusVisible && status != models.ReviewStatusHidden {
		return nil, ErrInvalidStatus
	}
	r, err := s.find(reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(r).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	r.Status = status
	s.refresh(ctx, r.PropertyID)
	s.audit.Record(adminID, "review."+status, "review", r.ID.String(), map[string]interface{}{
		"property_id": r.PropertyID.String(),
	})
	return r, nil
}

func (s *Service) AdminDelete(ctx context.Context, adminID, reviewID uuid.UUID) error {
	r, err := s.find(reviewID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(r).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	s.refresh(ctx, r.PropertyID)
	s.audit.Record(adminID, "review.delete", "review", r.ID.String(), map[string]interface{}{
		"property_id": r.PropertyID.String(),
		"rating":      r.Rating,
		"comment":     r.Comment,
	})
	return nil
}
