package analytics

import (
	"context"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/scopes"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type LandlordAnalytics struct {
	Properties      map[string]int64  `json:"properties_by_status"`
	TotalProperties int64             `json:"total_properties"`
	Rooms           int64             `json:"total_rooms"`
	Beds            map[string]int64  `json:"beds_by_status"`
	TotalBeds       int64             `json:"total_beds"`
	OccupancyRate   float64           `json:"occupancy_rate"`
	Bookings        map[string]int64  `json:"bookings_by_status"`
	TotalRevenue    float64           `json:"total_revenue"`
	MonthlyRevenue  []MonthRevenue    `json:"monthly_revenue"`
	AverageRating   float64           `json:"average_rating"`
	TopProperties   []PropertyRevenue `json:"top_properties"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

type AdminDashboard struct {
	Users          map[string]int64 `json:"users_by_role"`
	TotalUsers     int64            `json:"total_users"`
	SuspendedUsers int64            `json:"suspended_users"`
	Properties     map[string]int64 `json:"properties_by_status"`
	PendingPermits int64            `json:"pending_permits"`
	Bookings       map[string]int64 `json:"bookings_by_status"`
	TotalRevenue   float64          `json:"total_revenue"`
	PendingFlags   int64            `json:"pending_flags"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type groupRow struct {
	Key   string
	Count int64
}

// countBy runs "SELECT col AS key, COUNT(*) ... GROUP BY col" on q.
func countBy(q *gorm.DB, col string) (map[string]int64, error) {
	var rows []groupRow
	if err := q.Select(col + " AS key, COUNT(*) AS count").Group(col).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

func landlordRooms(landlordID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("property_id IN (SELECT id FROM properties WHERE landlord_id = ?)", landlordID)
	}
}

func landlordBeds(landlordID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("room_id IN (SELECT rooms.id FROM rooms JOIN properties ON properties.id = rooms.property_id WHERE properties.landlord_id = ?)", landlordID)
	}
}

// RevenueBookings loads the revenue-counting bookings with the relations
// EffectivePrice needs. A nil landlordID means every landlord.
func RevenueBookings(db *gorm.DB, landlordID *uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	q := db.Model(&models.Booking{}).
		Where("status IN ?", []string{models.BookingStatusApproved, models.BookingStatusCompleted})
	if landlordID != nil {
		q = q.Scopes(scopes.LandlordBookings(*landlordID))
	}
	err := q.Preload("Property").Preload("Room").Preload("Bed").Find(&bookings).Error
	return bookings, err
}

func (s *Service) Landlord(ctx context.Context, landlordID uuid.UUID) (*LandlordAnalytics, error) {
	out := &LandlordAnalytics{GeneratedAt: s.now().UTC()}
	db := s.db.WithContext(ctx)

	var bookings []models.Booking
	var props []models.Property

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Properties, err = countBy(db.Model(&models.Property{}).Scopes(scopes.ForLandlord(landlordID)), "status")
		return err
	})
	g.Go(func() error {
		return db.Model(&models.Room{}).Scopes(landlordRooms(landlordID)).Count(&out.Rooms).Error
	})
	g.Go(func() (err error) {
		out.Beds, err = countBy(db.Model(&models.Bed{}).Scopes(landlordBeds(landlordID)), "status")
		return err
	})
	g.Go(func() (err error) {
		out.Bookings, err = countBy(db.Model(&models.Booking{}).Scopes(scopes.LandlordBookings(landlordID)), "status")
		return err
	})
	g.Go(func() (err error) {
		bookings, err = RevenueBookings(db, &landlordID)
		return err
	})
	g.Go(func() error {
		return db.Select("id", "avg_rating", "review_count").Scopes(scopes.ForLandlord(landlordID)).Find(&props).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TotalProperties = sumCounts(out.Properties)
	out.TotalBeds = sumCounts(out.Beds)
	out.OccupancyRate = OccupancyRate(out.Beds[models.BedStatusOccupied], out.TotalBeds)
	out.AverageRating = WeightedRating(props)

	rev := Summarize(bookings, out.GeneratedAt)
	out.TotalRevenue = rev.Total
	out.MonthlyRevenue = rev.Monthly
	out.TopProperties = rev.TopProperties
	return out, nil
}

// Dashboard gathers platform-wide counts. The queries run concurrently and
// the first failure is returned after all have finished.
func (s *Service) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	out := &AdminDashboard{GeneratedAt: s.now().UTC()}
	db := s.db.WithContext(ctx)

	var bookings []models.Booking

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Users, err = countBy(db.Model(&models.User{}), "role")
		return err
	})
	g.Go(func() error {
		return db.Model(&models.User{}).Where("status = ?", models.UserStatusSuspended).Count(&out.SuspendedUsers).Error
	})
	g.Go(func() (err error) {
		out.Properties, err = countBy(db.Model(&models.Property{}), "status")
		return err
	})
	g.Go(func() error {
		return db.Model(&models.LandlordPermit{}).Where("status = ?", models.PermitStatusPending).Count(&out.PendingPermits).Error
	})
	g.Go(func() (err error) {
		out.Bookings, err = countBy(db.Model(&models.Booking{}), "status")
		return err
	})
	g.Go(func() error {
		return db.Model(&models.Flag{}).Where("status = ?", services.FlagStatusPending).Count(&out.PendingFlags).Error
	})
	g.Go(func() (err error) {
		bookings, err = RevenueBookings(db, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TotalUsers = sumCounts(out.Users)
	out.TotalRevenue = Summarize(bookings, out.GeneratedAt).Total
	return out, nil
}
