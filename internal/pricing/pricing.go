// Package pricing resolves what a booking costs.
package pricing

import (
	"math"

	"github.com/boardinghub/boardinghub-api/internal/models"
)

// UnitPrice returns the monthly rate for a booking target: the bed price if
// set, else the room price, else the property price. Any argument may be nil.
func UnitPrice(bed *models.Bed, room *models.Room, property *models.Property) float64 {
	if bed != nil && bed.Price > 0 {
		return bed.Price
	}
	if room != nil && room.Price > 0 {
		return room.Price
	}
	if property != nil && property.Price > 0 {
		return property.Price
	}
	return 0
}

// Total is unit price times months, rounded to cents. Months below one count
// as one.
func Total(unit float64, months int) float64 {
	if months < 1 {
		months = 1
	}
	return Round2(unit * float64(months))
}

// EffectivePrice is the stored total when positive, otherwise the total
// recomputed from the booking's preloaded Bed, Room and Property.
func EffectivePrice(b *models.Booking) float64 {
	if b.TotalPrice != nil && *b.TotalPrice > 0 {
		return *b.TotalPrice
	}
	return Total(UnitPrice(b.Bed, b.Room, b.Property), b.DurationMonths)
}

// EffectiveUnitPrice is the monthly rate behind EffectivePrice.
func EffectiveUnitPrice(b *models.Booking) float64 {
	if b.TotalPrice != nil && *b.TotalPrice > 0 {
		months := b.DurationMonths
		if months < 1 {
			months = 1
		}
		return Round2(*b.TotalPrice / float64(months))
	}
	return UnitPrice(b.Bed, b.Room, b.Property)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
