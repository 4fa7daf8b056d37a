package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoverImageURL(t *testing.T) {
	const placeholder = "/files/placeholder.png"

	t.Run("no images falls back", func(t *testing.T) {
		assert.Equal(t, placeholder, CoverImageURL(nil, placeholder))
	})

	t.Run("category precedence wins over insertion order", func(t *testing.T) {
		images := []PropertyImage{
			{Category: "kitchen", URL: "k.jpg"},
			{Category: "room", URL: "r.jpg"},
			{Category: "exterior", URL: "e.jpg", SortOrder: 3},
		}
		assert.Equal(t, "e.jpg", CoverImageURL(images, placeholder))
	})

	t.Run("sort order breaks ties", func(t *testing.T) {
		images := []PropertyImage{
			{Category: "cover", URL: "b.jpg", SortOrder: 2},
			{Category: "cover", URL: "a.jpg", SortOrder: 1},
		}
		assert.Equal(t, "a.jpg", CoverImageURL(images, placeholder))
	})

	t.Run("unknown category ranks last", func(t *testing.T) {
		images := []PropertyImage{
			{Category: "mystery", URL: "m.jpg"},
			{Category: "bathroom", URL: "b.jpg"},
		}
		assert.Equal(t, "b.jpg", CoverImageURL(images, placeholder))
	})
}

func TestVerificationTokenUsable(t *testing.T) {
	now := time.Now()
	tok := VerificationToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.Usable(now))

	consumed := now
	tok.ConsumedAt = &consumed
	assert.False(t, tok.Usable(now))

	expired := VerificationToken{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Usable(now))
}

func TestBookingStatusHelpers(t *testing.T) {
	b := Booking{Status: BookingStatusPending}
	assert.True(t, b.IsActive())
	assert.False(t, b.CountsAsRevenue())

	b.Status = BookingStatusCompleted
	assert.False(t, b.IsActive())
	assert.True(t, b.CountsAsRevenue())

	assert.True(t, IsValidBookingStatus("cancelled"))
	assert.False(t, IsValidBookingStatus("paid"))
	assert.True(t, IsValidRole(RoleLandlord))
	assert.False(t, IsValidRole("owner"))
}
