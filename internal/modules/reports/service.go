package reports

import (
	"context"
	"errors"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/scopes"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnknownKind  = errors.New("unknown report: must be revenue, bookings, or properties")
	ErrInvalidDate  = errors.New("invalid date: use YYYY-MM-DD")
	ErrInvalidRange = errors.New("from must not be after to")
)

const (
	KindRevenue    = "revenue"
	KindBookings   = "bookings"
	KindProperties = "properties"
)

// Scope narrows a report. A nil LandlordID covers every landlord; From and
// To bound the move-in date inclusively and do not apply to the
// properties report.
type Scope struct {
	LandlordID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// ParseRange reads optional YYYY-MM-DD bounds.
func ParseRange(from, to string) (*time.Time, *time.Time, error) {
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, ErrInvalidDate
		}
		return &t, nil
	}
	f, err := parse(from)
	if err != nil {
		return nil, nil, err
	}
	t, err := parse(to)
	if err != nil {
		return nil, nil, err
	}
	if f != nil && t != nil && f.After(*t) {
		return nil, nil, ErrInvalidRange
	}
	return f, t, nil
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) Build(ctx context.Context, kind string, scope Scope) (*Table, error) {
	now := s.now().UTC()
	switch kind {
	case KindRevenue:
		bookings, err := s.bookings(ctx, scope, true)
		if err != nil {
			return nil, err
		}
		return RevenueTable(bookings, now), nil
	case KindBookings:
		bookings, err := s.bookings(ctx, scope, false)
		if err != nil {
			return nil, err
		}
		return BookingsTable(bookings, now), nil
	case KindProperties:
		props, err := s.properties(ctx, scope)
		if err != nil {
			return nil, err
		}
		return PropertiesTable(props, now), nil
	}
	return nil, ErrUnknownKind
}

func (s *Service) bookings(ctx context.Context, scope Scope, revenueOnly bool) ([]models.Booking, error) {
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if scope.LandlordID != nil {
		q = q.Scopes(scopes.LandlordBookings(*scope.LandlordID))
	}
	if revenueOnly {
		q = q.Where("status IN ?", []string{models.BookingStatusApproved, models.BookingStatusCompleted})
	}
	if scope.From != nil {
		q = q.Where("move_in_date >= ?", scope.From.Format(dateLayout))
	}
	if scope.To != nil {
		q = q.Where("move_in_date <= ?", scope.To.Format(dateLayout))
	}

	var bookings []models.Booking
	err := q.Preload("Property").Preload("Room").Preload("Bed").Preload("Tenant").
		Order("move_in_date ASC, created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (s *Service) properties(ctx context.Context, scope Scope) ([]models.Property, error) {
	q := s.db.WithContext(ctx).Model(&models.Property{})
	if scope.LandlordID != nil {
		q = q.Scopes(scopes.ForLandlord(*scope.LandlordID))
	}
	var props []models.Property
	err := q.Preload("Rooms.Beds").Order("title ASC").Find(&props).Error
	return props, err
}
