package analytics

import (
	"sort"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/pricing"
	"github.com/google/uuid"
)

const (
	monthWindow  = 12
	topPropCount = 5
	monthLayout  = "2006-01"
)

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type PropertyRevenue struct {
	PropertyID uuid.UUID `json:"property_id"`
	Title      string    `json:"title"`
	Revenue    float64   `json:"revenue"`
	Bookings   int       `json:"bookings"`
}

type Revenue struct {
	Total         float64           `json:"total_revenue"`
	Monthly       []MonthRevenue    `json:"monthly_revenue"`
	TopProperties []PropertyRevenue `json:"top_properties"`
}

// Summarize totals the effective price of revenue-counting bookings. The
// monthly series covers the twelve calendar months ending with now's month,
// keyed by move-in month; older or future move-ins still count toward the
// total.
func Summarize(bookings []models.Booking, now time.Time) Revenue {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthWindow - 1), 0)

	monthly := make([]MonthRevenue, monthWindow)
	index := make(map[string]int, monthWindow)
	for i := 0; i < monthWindow; i++ {
		key := start.AddDate(0, i, 0).Format(monthLayout)
		monthly[i] = MonthRevenue{Month: key}
		index[key] = i
	}

	var total float64
	byProperty := map[uuid.UUID]*PropertyRevenue{}
	for i := range bookings {
		b := &bookings[i]
		if !b.CountsAsRevenue() {
			continue
		}
		amount := pricing.EffectivePrice(b)
		total += amount

		if m, ok := index[b.MoveInDate.UTC().Format(monthLayout)]; ok {
			monthly[m].Revenue += amount
		}

		pr, ok := byProperty[b.PropertyID]
		if !ok {
			pr = &PropertyRevenue{PropertyID: b.PropertyID}
			if b.Property != nil {
				pr.Title = b.Property.Title
			}
			byProperty[b.PropertyID] = pr
		}
		pr.Revenue += amount
		pr.Bookings++
	}

	for i := range monthly {
		monthly[i].Revenue = pricing.Round2(monthly[i].Revenue)
	}

	top := make([]PropertyRevenue, 0, len(byProperty))
	for _, pr := range byProperty {
		pr.Revenue = pricing.Round2(pr.Revenue)
		top = append(top, *pr)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Revenue != top[j].Revenue {
			return top[i].Revenue > top[j].Revenue
		}
		return top[i].Title < top[j].Title
	})
	if len(top) > topPropCount {
		top = top[:topPropCount]
	}

	return Revenue{Total: pricing.Round2(total), Monthly: monthly, TopProperties: top}
}

// OccupancyRate is occupied over total beds, or 0 with no beds.
func OccupancyRate(occupied, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return pricing.Round2(float64(occupied) / float64(total))
}

// WeightedRating averages property ratings weighted by review count.
func WeightedRating(props []models.Property) float64 {
	var sum float64
	var n int
	for _, p := range props {
		if p.ReviewCount <= 0 {
			continue
		}
		sum += p.AvgRating * float64(p.ReviewCount)
		n += p.ReviewCount
	}
	if n == 0 {
		return 0
	}
	return pricing.Round2(sum / float64(n))
}

func sumCounts(m map[string]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}
