package permits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPermitNotFound      = errors.New("permit not found")
	ErrPermitTypeRequired  = errors.New("permit_type is required")
	ErrPermitLocked        = errors.New("an approved permit of this type already exists")
	ErrRemarksRequired     = errors.New("remarks are required when rejecting a permit")
	ErrPermitAlreadyFinal  = errors.New("permit has already been reviewed")
	ErrInvalidPermitStatus = errors.New("invalid status: must be pending, approved, or rejected")
	ErrFileRequired        = errors.New("a permit file is required")
)

// Permit files are never served statically; they stream through
// LandlordFilePath or AdminFilePath.
const permitBucket = "permits"

func LandlordFilePath(permitID uuid.UUID) string {
	return "/api/landlord/permits/" + permitID.String() + "/file"
}

func AdminFilePath(permitID uuid.UUID) string {
	return "/api/admin/permits/" + permitID.String() + "/file"
}

type Service struct {
	db            *gorm.DB
	store         storage.Storage
	profiles      *services.ProfileService
	notifications *services.NotificationService
	audit         *services.AuditService
	maxUpload     int64
}

func NewService(db *gorm.DB, store storage.Storage, profiles *services.ProfileService,
	notifications *services.NotificationService, audit *services.AuditService, maxUpload int64) *Service {
	return &Service{
		db:            db,
		store:         store,
		profiles:      profiles,
		notifications: notifications,
		audit:         audit,
		maxUpload:     maxUpload,
	}
}

func (s *Service) user(userID uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Profile resolves (creating if needed) the caller's landlord profile.
func (s *Service) Profile(userID uuid.UUID) (*models.LandlordProfile, error) {
	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.Resolve(u, true)
}

func (s *Service) UpdateProfile(userID uuid.UUID, in services.UpdateProfileInput) (*models.LandlordProfile, error) {
	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.Update(u, in)
}

// Upload stores a permit document. A pending or rejected permit of the same
// type is replaced and goes back to pending; an approved one is left alone.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, permitType, permitNumber string, fh *multipart.FileHeader) (*models.LandlordPermit, error) {
	permitType = strings.TrimSpace(strings.ToLower(permitType))
	if permitType == "" {
		return nil, ErrPermitTypeRequired
	}
	if fh == nil {
		return nil, ErrFileRequired
	}
	mime, ext, err := storage.SniffUpload(fh, s.maxUpload, storage.PermitTypes)
	if err != nil {
		return nil, err
	}

	profile, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}

	var existing models.LandlordPermit
	err = s.db.Where("landlord_profile_id = ? AND permit_type = ?", profile.ID, permitType).
		Order("created_at DESC").First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if found && existing.Status == models.PermitStatusApproved {
		return nil, ErrPermitLocked
	}

	key := storage.NewKey(permitBucket, profile.ID.String(), ext)
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	if _, err := s.store.Save(ctx, key, f, mime); err != nil {
		return nil, fmt.Errorf("failed to store permit: %w", err)
	}

	var permit models.LandlordPermit
	if found {
		url := LandlordFilePath(existing.ID)
		oldKey := existing.StorageKey
		err = s.db.Model(&existing).Updates(map[string]interface{}{
			"permit_number": strings.TrimSpace(permitNumber),
			"file_url":      url,
			"storage_key":   key,
			"mime_type":     mime,
			"status":        models.PermitStatusPending,
			"reviewed_by":   nil,
			"reviewed_at":   nil,
			"remarks":       "",
		}).Error
		if err != nil {
			s.removeFile(ctx, key)
			return nil, fmt.Errorf("failed to replace permit: %w", err)
		}
		s.removeFile(ctx, oldKey)
		permit = existing
		permit.PermitNumber = strings.TrimSpace(permitNumber)
		permit.FileURL, permit.StorageKey, permit.MimeType = url, key, mime
		permit.Status = models.PermitStatusPending
		permit.ReviewedBy, permit.ReviewedAt, permit.Remarks = nil, nil, ""
	} else {
		id := uuid.New()
		permit = models.LandlordPermit{
			ID:                id,
			LandlordProfileID: profile.ID,
			PermitType:        permitType,
			PermitNumber:      strings.TrimSpace(permitNumber),
			FileURL:           LandlordFilePath(id),
			StorageKey:        key,
			MimeType:          mime,
			Status:            models.PermitStatusPending,
		}
		if err := s.db.Create(&permit).Error; err != nil {
			s.removeFile(ctx, key)
			return nil, fmt.Errorf("failed to save permit: %w", err)
		}
	}

	if profile.VerificationStatus != models.ProfileVerified {
		if err := s.db.Model(profile).Update("verification_status", models.ProfilePending).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile status: %w", err)
		}
		profile.VerificationStatus = models.ProfilePending
	}
	return &permit, nil
}

func (s *Service) removeFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete permit file", "key", key, "error", err)
	}
}

// PermitFile is an open permit document. The caller closes Body.
type PermitFile struct {
	Body     io.ReadCloser
	MimeType string
	Name     string
}

// OpenFile opens a permit's document. With ownerID set, only the landlord
// who uploaded it may open it; other callers get ErrPermitNotFound.
func (s *Service) OpenFile(ctx context.Context, permitID uuid.UUID, ownerID *uuid.UUID) (*PermitFile, error) {
	var permit models.LandlordPermit
	if err := s.db.First(&permit, "id = ?", permitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermitNotFound
		}
		return nil, err
	}
	if ownerID != nil {
		profile, err := s.Profile(*ownerID)
		if err != nil {
			return nil, err
		}
		if profile.ID != permit.LandlordProfileID {
			return nil, ErrPermitNotFound
		}
	}
	if permit.StorageKey == "" {
		return nil, ErrPermitNotFound
	}

	body, err := s.store.Open(ctx, permit.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPermitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open permit file: %w", err)
	}
	return &PermitFile{
		Body:     body,
		MimeType: permit.MimeType,
		Name:     permit.PermitType + "-permit" + path.Ext(permit.StorageKey),
	}, nil
}

func (s *Service) ListMine(userID uuid.UUID) ([]models.LandlordPermit, error) {
	profile, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	var permits []models.LandlordPermit
	err = s.db.Where("landlord_profile_id = ?", profile.ID).Order("created_at DESC").Find(&permits).Error
	return permits, err
}

func (s *Service) List(status string, limit, offset int) ([]models.LandlordPermit, int64, error) {
	if status != "" && status != models.PermitStatusPending && status != models.PermitStatusApproved && status != models.PermitStatusRejected {
		return nil, 0, ErrInvalidPermitStatus
	}
	var permits []models.LandlordPermit
	var total int64

	query := s.db.Model(&models.LandlordPermit{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("LandlordProfile").Order("created_at ASC").Limit(limit).Offset(offset).Find(&permits).Error
	if err != nil {
		return nil, 0, err
	}
	return permits, total, nil
}

// Review approves or rejects a pending permit. Approval verifies the
// landlord's profile.
func (s *Service) Review(adminID, permitID uuid.UUID, approve bool, remarks string) (*models.LandlordPermit, error) {
	remarks = strings.TrimSpace(remarks)
	if !approve && remarks == "" {
		return nil, ErrRemarksRequired
	}

	var permit models.LandlordPermit
	if err := s.db.Preload("LandlordProfile").First(&permit, "id = ?", permitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermitNotFound
		}
		return nil, err
	}
	if permit.Status != models.PermitStatusPending {
		return nil, ErrPermitAlreadyFinal
	}

	status := models.PermitStatusRejected
	if approve {
		status = models.PermitStatusApproved
	}
	now := time.Now().UTC()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.LandlordPermit{}).
			Where("id = ? AND status = ?", permit.ID, models.PermitStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"reviewed_by": adminID,
				"reviewed_at": now,
				"remarks":     remarks,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPermitAlreadyFinal
		}
		if approve {
			return tx.Model(&models.LandlordProfile{}).Where("id = ?", permit.LandlordProfileID).
				Update("verification_status", models.ProfileVerified).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	permit.Status = status
	permit.ReviewedBy = &adminID
	permit.ReviewedAt = &now
	permit.Remarks = remarks

	if p := permit.LandlordProfile; p != nil && p.UserID != nil {
		title, msg := "Permit approved", fmt.Sprintf("Your %s permit was approved. Your listings can now be published.", permit.PermitType)
		if !approve {
			title, msg = "Permit rejected", fmt.Sprintf("Your %s permit was rejected: %s", permit.PermitType, remarks)
		}
		s.notifications.Notify(*p.UserID, services.NotifyPermitReviewed, title, msg, "/landlord/permits")
	}
	s.audit.Record(adminID, "permit."+status, "permit", permit.ID.String(), map[string]interface{}{
		"permit_type": permit.PermitType,
		"remarks":     remarks,
	})
	return &permit, nil
}

// HasApprovedPermit reports whether the landlord user holds at least one
// approved permit.
func HasApprovedPermit(db *gorm.DB, landlordID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.LandlordPermit{}).
		Joins("JOIN landlord_profiles ON landlord_profiles.id = landlord_permits.landlord_profile_id").
		Where("landlord_profiles.user_id = ? AND landlord_permits.status = ?", landlordID, models.PermitStatusApproved).
		Count(&count).Error
	return count > 0, err
}
