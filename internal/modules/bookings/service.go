package bookings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/pricing"
	"github.com/boardinghub/boardinghub-api/internal/scopes"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrPropertyUnavailable = errors.New("property is not open for bookings")
	ErrRoomNotFound        = errors.New("room does not belong to this property")
	ErrBedNotFound         = errors.New("bed does not belong to this room")
	ErrRoomUnavailable     = errors.New("room is not available")
	ErrBedUnavailable      = errors.New("bed is not available")
	ErrBedRequired         = errors.New("this room is let per bed, choose a bed")
	ErrInvalidDate         = errors.New("move_in_date must be a date in YYYY-MM-DD format")
	ErrMoveInPast          = errors.New("move_in_date cannot be in the past")
	ErrInvalidDuration     = errors.New("duration_months must be at least 1")
	ErrDurationTooLong     = errors.New("duration_months exceeds the maximum allowed")
	ErrDuplicateBooking    = errors.New("you already have an active booking for this bed")
	ErrNotPending          = errors.New("only pending bookings can be decided")
	ErrNotCancellable      = errors.New("only pending or approved bookings can be cancelled")
	ErrNotApproved         = errors.New("only approved bookings can be completed")
	ErrReasonRequired      = errors.New("a reason is required")
	ErrInvalidStatusFilter = errors.New("invalid status filter")
)

const (
	dateLayout        = "2006-01-02"
	defaultMaxMonths  = 12
	autoRejectMessage = "The bed was assigned to another tenant."
)

var activeStatuses = []string{models.BookingStatusPending, models.BookingStatusApproved}

type Service struct {
	db            *gorm.DB
	notifications *services.NotificationService
	settings      *services.SettingsService
	now           func() time.Time
}

func NewService(db *gorm.DB, notifications *services.NotificationService, settings *services.SettingsService) *Service {
	return &Service{db: db, notifications: notifications, settings: settings, now: time.Now}
}

type CreateInput struct {
	PropertyID     uuid.UUID  `json:"property_id"`
	RoomID         *uuid.UUID `json:"room_id"`
	BedID          *uuid.UUID `json:"bed_id"`
	MoveInDate     string     `json:"move_in_date"`
	DurationMonths int        `json:"duration_months"`
	Notes          string     `json:"notes"`
}

// validate checks the fields that need no database access and returns the
// parsed move-in date.
func (s *Service) validate(in *CreateInput) (time.Time, error) {
	moveIn, err := time.Parse(dateLayout, strings.TrimSpace(in.MoveInDate))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if moveIn.Before(today) {
		return time.Time{}, ErrMoveInPast
	}
	if in.DurationMonths < 1 {
		return time.Time{}, ErrInvalidDuration
	}
	if in.DurationMonths > s.settings.Int(services.SettingMaxBookingMonths, defaultMaxMonths) {
		return time.Time{}, ErrDurationTooLong
	}
	return moveIn, nil
}

func (s *Service) Create(tenantID uuid.UUID, in *CreateInput) (*models.Booking, error) {
	moveIn, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	var property models.Property
	if err := s.db.First(&property, "id = ?", in.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyUnavailable
		}
		return nil, err
	}
	if property.Status != models.PropertyStatusApproved {
		return nil, ErrPropertyUnavailable
	}

	var bed *models.Bed
	var room *models.Room
	if in.BedID != nil {
		bed = &models.Bed{}
		if err := s.db.First(bed, "id = ?", *in.BedID).Error; err != nil {
			return nil, ErrBedNotFound
		}
		if in.RoomID != nil && *in.RoomID != bed.RoomID {
			return nil, ErrBedNotFound
		}
		roomID := bed.RoomID
		in.RoomID = &roomID
		if bed.Status != models.BedStatusAvailable {
			return nil, ErrBedUnavailable
		}
	}
	if in.RoomID != nil {
		room = &models.Room{}
		if err := s.db.First(room, "id = ? AND property_id = ?", *in.RoomID, property.ID).Error; err != nil {
			return nil, ErrRoomNotFound
		}
		if room.Status == models.RoomStatusMaintenance || (bed == nil && room.Status == models.RoomStatusFull) {
			return nil, ErrRoomUnavailable
		}
		if bed == nil {
			var beds int64
			if err := s.db.Model(&models.Bed{}).Where("room_id = ?", room.ID).Count(&beds).Error; err != nil {
				return nil, err
			}
			if beds > 0 {
				return nil, ErrBedRequired
			}
		}
	}

	dup := s.db.Model(&models.Booking{}).Scopes(scopes.ForTenant(tenantID)).Where("status IN ?", activeStatuses)
	switch {
	case bed != nil:
		dup = dup.Where("bed_id = ?", bed.ID)
	case room != nil:
		dup = dup.Where("room_id = ? AND bed_id IS NULL", room.ID)
	default:
		dup = dup.Where("property_id = ? AND room_id IS NULL", property.ID)
	}
	var count int64
	if err := dup.Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateBooking
	}

	booking := models.Booking{
		ID:             uuid.New(),
		TenantID:       tenantID,
		PropertyID:     property.ID,
		RoomID:         in.RoomID,
		BedID:          in.BedID,
		MoveInDate:     moveIn,
		DurationMonths: in.DurationMonths,
		Status:         models.BookingStatusPending,
		Notes:          strings.TrimSpace(in.Notes),
	}
	if total := pricing.Total(pricing.UnitPrice(bed, room, &property), in.DurationMonths); total > 0 {
		booking.TotalPrice = &total
	}
	if err := s.db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.notifications.Notify(property.LandlordID, services.NotifyBookingRequested,
		"New booking request",
		fmt.Sprintf("A tenant requested %s from %s for %d month(s).", property.Title, moveIn.Format(dateLayout), in.DurationMonths),
		"/landlord/bookings")

	booking.Property = &property
	booking.Room = room
	booking.Bed = bed
	return &booking, nil
}

func validStatusFilter(status string) bool {
	return status == "" || models.IsValidBookingStatus(status)
}

func (s *Service) ListMine(tenantID uuid.UUID, status string, limit, offset int) ([]models.Booking, int64, error) {
	if !validStatusFilter(status) {
		return nil, 0, ErrInvalidStatusFilter
	}
	var items []models.Booking
	var total int64

	query := s.db.Model(&models.Booking{}).Scopes(scopes.ForTenant(tenantID), scopes.WithStatus(status))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Property").Preload("Room").Preload("Bed").
		Order("created_at DESC").Scopes(scopes.Paginate(limit, offset)).Find(&items).Error
	return items, total, err
}

func (s *Service) ListForLandlord(landlordID uuid.UUID, status string, propertyID *uuid.UUID, limit, offset int) ([]models.Booking, int64, error) {
	if !validStatusFilter(status) {
		return nil, 0, ErrInvalidStatusFilter
	}
	var items []models.Booking
	var total int64

	query := s.db.Model(&models.Booking{}).Scopes(scopes.LandlordBookings(landlordID), scopes.WithStatus(status))
	if propertyID != nil {
		query = query.Where("property_id = ?", *propertyID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Tenant").Preload("Property").Preload("Room").Preload("Bed").
		Order("created_at DESC").Scopes(scopes.Paginate(limit, offset)).Find(&items).Error
	return items, total, err
}

// lockForLandlord loads a booking on one of landlordID's properties with a
// row lock. Must be called inside a transaction.
func lockForLandlord(tx *gorm.DB, landlordID, bookingID uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scopes.LandlordBookings(landlordID)).
		First(&b, "id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	return &b, err
}

// Approve accepts a pending booking. The booked bed becomes occupied, other
// pending requests for it are rejected and a room that reaches capacity is
// marked full, all in one transaction.
func (s *Service) Approve(landlordID, bookingID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	var displaced []models.Booking
	now := s.now().UTC()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := lockForLandlord(tx, landlordID, bookingID)
		if err != nil {
			return err
		}
		if b.Status != models.BookingStatusPending {
			return ErrNotPending
		}

		if b.BedID != nil {
			var bed models.Bed
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bed, "id = ?", *b.BedID).Error; err != nil {
				return err
			}
			if bed.Status == models.BedStatusOccupied {
				return ErrBedUnavailable
			}
			if err := tx.Model(&bed).Update("status", models.BedStatusOccupied).Error; err != nil {
				return err
			}

			if err := tx.Where("bed_id = ? AND id <> ? AND status = ?", bed.ID, b.ID, models.BookingStatusPending).
				Find(&displaced).Error; err != nil {
				return err
			}
			if len(displaced) > 0 {
				if err := tx.Model(&models.Booking{}).
					Where("bed_id = ? AND id <> ? AND status = ?", bed.ID, b.ID, models.BookingStatusPending).
					Updates(map[string]interface{}{
						"status":          models.BookingStatusRejected,
						"decision_reason": autoRejectMessage,
						"decided_at":      now,
					}).Error; err != nil {
					return err
				}
			}
		} else if b.RoomID != nil {
			var room models.Room
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, "id = ?", *b.RoomID).Error; err != nil {
				return err
			}
			if room.Status != models.RoomStatusAvailable {
				return ErrRoomUnavailable
			}
		}

		if err := tx.Model(b).Updates(map[string]interface{}{
			"status":     models.BookingStatusApproved,
			"decided_at": now,
		}).Error; err != nil {
			return err
		}
		b.Status = models.BookingStatusApproved
		b.DecidedAt = &now

		if b.RoomID != nil {
			if err := markRoomIfFull(tx, *b.RoomID); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(booking.TenantID, services.NotifyBookingApproved,
		"Booking approved", "Your booking request was approved.", "/tenant/bookings")
	for _, d := range displaced {
		s.notifications.Notify(d.TenantID, services.NotifyBookingRejected,
			"Booking declined", autoRejectMessage, "/tenant/bookings")
	}
	return booking, nil
}

// markRoomIfFull sets a room to full once its occupancy reaches capacity.
// Occupancy is occupied beds plus approved whole-room bookings.
func markRoomIfFull(tx *gorm.DB, roomID uuid.UUID) error {
	var room models.Room
	if err := tx.First(&room, "id = ?", roomID).Error; err != nil {
		return err
	}
	if room.Status != models.RoomStatusAvailable {
		return nil
	}

	var beds, whole int64
	if err := tx.Model(&models.Bed{}).
		Where("room_id = ? AND status = ?", roomID, models.BedStatusOccupied).
		Count(&beds).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Booking{}).
		Where("room_id = ? AND bed_id IS NULL AND status = ?", roomID, models.BookingStatusApproved).
		Count(&whole).Error; err != nil {
		return err
	}
	if beds+whole >= int64(room.Capacity) {
		return tx.Model(&room).Update("status", models.RoomStatusFull).Error
	}
	return nil
}

// release frees the bed held by an approved booking and reopens a full room.
func release(tx *gorm.DB, b *models.Booking) error {
	if b.BedID != nil {
		if err := tx.Model(&models.Bed{}).Where("id = ?", *b.BedID).
			Update("status", models.BedStatusAvailable).Error; err != nil {
			return err
		}
	}
	if b.RoomID != nil {
		return tx.Model(&models.Room{}).Where("id = ? AND status = ?", *b.RoomID, models.RoomStatusFull).
			Update("status", models.RoomStatusAvailable).Error
	}
	return nil
}

func (s *Service) Reject(landlordID, bookingID uuid.UUID, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	var booking *models.Booking
	now := s.now().UTC()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := lockForLandlord(tx, landlordID, bookingID)
		if err != nil {
			return err
		}
		if b.Status != models.BookingStatusPending {
			return ErrNotPending
		}
		if err := tx.Model(b).Updates(map[string]interface{}{
			"status":          models.BookingStatusRejected,
			"decision_reason": reason,
			"decided_at":      now,
		}).Error; err != nil {
			return err
		}
		b.Status, b.DecisionReason, b.DecidedAt = models.BookingStatusRejected, reason, &now
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(booking.TenantID, services.NotifyBookingRejected,
		"Booking declined", reason, "/tenant/bookings")
	return booking, nil
}

func (s *Service) Complete(landlordID, bookingID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := lockForLandlord(tx, landlordID, bookingID)
		if err != nil {
			return err
		}
		if b.Status != models.BookingStatusApproved {
			return ErrNotApproved
		}
		if err := tx.Model(b).Update("status", models.BookingStatusCompleted).Error; err != nil {
			return err
		}
		if err := release(tx, b); err != nil {
			return err
		}
		b.Status = models.BookingStatusCompleted
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(booking.TenantID, services.NotifyBookingCompleted,
		"Stay completed", "Your stay has been marked as completed. You can now leave a review.", "/tenant/bookings")
	return booking, nil
}

// Cancel withdraws a tenant's pending or approved booking. Cancelling an
// approved booking frees its bed.
func (s *Service) Cancel(tenantID, bookingID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	var landlordID uuid.UUID
	now := s.now().UTC()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(scopes.ForTenant(tenantID)).
			First(&b, "id = ?", bookingID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if !b.IsActive() {
			return ErrNotCancellable
		}
		wasApproved := b.Status == models.BookingStatusApproved

		if err := tx.Model(&b).Updates(map[string]interface{}{
			"status":     models.BookingStatusCancelled,
			"decided_at": now,
		}).Error; err != nil {
			return err
		}
		if wasApproved {
			if err := release(tx, &b); err != nil {
				return err
			}
		}
		b.Status = models.BookingStatusCancelled
		b.DecidedAt = &now

		var p models.Property
		if err := tx.Select("id", "landlord_id").First(&p, "id = ?", b.PropertyID).Error; err == nil {
			landlordID = p.LandlordID
		}
		booking = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(landlordID, services.NotifyBookingCancelled,
		"Booking cancelled", "A tenant cancelled their booking.", "/landlord/bookings")
	return booking, nil
}
