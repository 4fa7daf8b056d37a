package analytics

import (
	"testing"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	a := &models.Property{ID: uuid.New(), Title: "Alpha House", Price: 100}
	b := &models.Property{ID: uuid.New(), Title: "Beta Dorm", Price: 50}

	bookings := []models.Booking{
		{PropertyID: a.ID, Property: a, Status: models.BookingStatusApproved, TotalPrice: ptr(300), DurationMonths: 3, MoveInDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		// no stored total: falls back to the bed price
		{PropertyID: a.ID, Property: a, Bed: &models.Bed{Price: 80}, Status: models.BookingStatusCompleted, DurationMonths: 2, MoveInDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{PropertyID: b.ID, Property: b, Status: models.BookingStatusCompleted, DurationMonths: 1, MoveInDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{PropertyID: b.ID, Property: b, Status: models.BookingStatusPending, TotalPrice: ptr(999), DurationMonths: 1, MoveInDate: now},
		{PropertyID: b.ID, Property: b, Status: models.BookingStatusCancelled, TotalPrice: ptr(999), DurationMonths: 1, MoveInDate: now},
	}

	rev := Summarize(bookings, now)

	assert.Equal(t, 510.0, rev.Total)
	require.Len(t, rev.Monthly, 12)
	assert.Equal(t, "2024-07", rev.Monthly[0].Month)
	assert.Equal(t, "2025-06", rev.Monthly[11].Month)
	assert.Equal(t, 300.0, rev.Monthly[11].Revenue)
	assert.Equal(t, 160.0, rev.Monthly[6].Revenue)

	require.Len(t, rev.TopProperties, 2)
	assert.Equal(t, "Alpha House", rev.TopProperties[0].Title)
	assert.Equal(t, 460.0, rev.TopProperties[0].Revenue)
	assert.Equal(t, 2, rev.TopProperties[0].Bookings)
	assert.Equal(t, 50.0, rev.TopProperties[1].Revenue)
}

func TestSummarizeTopPropertiesCapped(t *testing.T) {
	now := time.Now()
	var bookings []models.Booking
	for i := 0; i < 8; i++ {
		p := &models.Property{ID: uuid.New(), Title: string(rune('A' + i))}
		bookings = append(bookings, models.Booking{
			PropertyID: p.ID, Property: p, Status: models.BookingStatusApproved,
			TotalPrice: ptr(float64(10 * (i + 1))), DurationMonths: 1, MoveInDate: now,
		})
	}

	rev := Summarize(bookings, now)

	require.Len(t, rev.TopProperties, 5)
	assert.Equal(t, 80.0, rev.TopProperties[0].Revenue)
	assert.Equal(t, 40.0, rev.TopProperties[4].Revenue)
}

func TestSummarizeEmpty(t *testing.T) {
	rev := Summarize(nil, time.Now())
	assert.Zero(t, rev.Total)
	assert.Len(t, rev.Monthly, 12)
	assert.Empty(t, rev.TopProperties)
}

func TestOccupancyRate(t *testing.T) {
	assert.Zero(t, OccupancyRate(0, 0))
	assert.Equal(t, 0.33, OccupancyRate(1, 3))
	assert.Equal(t, 1.0, OccupancyRate(4, 4))
}

func TestWeightedRating(t *testing.T) {
	props := []models.Property{
		{AvgRating: 5, ReviewCount: 1},
		{AvgRating: 3, ReviewCount: 3},
		{AvgRating: 4.5, ReviewCount: 0},
	}
	assert.Equal(t, 3.5, WeightedRating(props))
	assert.Zero(t, WeightedRating(nil))
}
