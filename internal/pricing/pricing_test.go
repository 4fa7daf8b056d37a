package pricing

import (
	"testing"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestUnitPriceFallbackOrder(t *testing.T) {
	property := &models.Property{Price: 3000}
	room := &models.Room{Price: 2500}
	bed := &models.Bed{Price: 1800}

	tests := []struct {
		name string
		bed  *models.Bed
		room *models.Room
		prop *models.Property
		want float64
	}{
		{"bed price first", bed, room, property, 1800},
		{"room when bed unpriced", &models.Bed{}, room, property, 2500},
		{"room when no bed", nil, room, property, 2500},
		{"property when room unpriced", &models.Bed{}, &models.Room{}, property, 3000},
		{"property only", nil, nil, property, 3000},
		{"nothing priced", nil, nil, nil, 0},
		{"negative bed ignored", &models.Bed{Price: -5}, nil, property, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitPrice(tt.bed, tt.room, tt.prop))
		})
	}
}

func TestEffectivePrice(t *testing.T) {
	b := &models.Booking{
		DurationMonths: 3,
		Bed:            &models.Bed{Price: 1500},
		Room:           &models.Room{Price: 2000},
		Property:       &models.Property{Price: 2500},
	}
	assert.Equal(t, 4500.0, EffectivePrice(b))
	assert.Equal(t, 1500.0, EffectiveUnitPrice(b))

	b.TotalPrice = ptr(0)
	assert.Equal(t, 4500.0, EffectivePrice(b), "zero stored total falls back")

	b.TotalPrice = ptr(4200)
	assert.Equal(t, 4200.0, EffectivePrice(b), "stored total wins")
	assert.Equal(t, 1400.0, EffectiveUnitPrice(b))

	noDuration := &models.Booking{Property: &models.Property{Price: 999.999}}
	assert.Equal(t, 1000.0, EffectivePrice(noDuration))
}
