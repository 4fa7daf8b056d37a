package reports

import (
	"fmt"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/pricing"
)

const dateLayout = "2006-01-02"

type Column struct {
	Header string
	Width  float64 // spreadsheet character width
	Money  bool
}

// Table is a rendered-format-agnostic report. Cell values are string, int
// or float64.
type Table struct {
	Title       string
	Sheet       string
	GeneratedAt time.Time
	Columns     []Column
	Rows        [][]any
	Totals      []any
}

var bookingColumns = []Column{
	{Header: "Booking ID", Width: 38},
	{Header: "Property", Width: 28},
	{Header: "Room", Width: 14},
	{Header: "Bed", Width: 10},
	{Header: "Tenant", Width: 22},
	{Header: "Tenant Email", Width: 28},
	{Header: "Move-in", Width: 12},
	{Header: "Months", Width: 8},
	{Header: "Unit Price", Width: 12, Money: true},
	{Header: "Total", Width: 12, Money: true},
	{Header: "Status", Width: 11},
}

func bookingRow(b *models.Booking) []any {
	var property, room, bed, tenant, email string
	if b.Property != nil {
		property = b.Property.Title
	}
	if b.Room != nil {
		room = b.Room.Name
	}
	if b.Bed != nil {
		bed = b.Bed.Label
	}
	if b.Tenant != nil {
		tenant = b.Tenant.FullName
		email = b.Tenant.Email
	}
	return []any{
		b.ID.String(), property, room, bed, tenant, email,
		b.MoveInDate.Format(dateLayout), b.DurationMonths,
		pricing.EffectiveUnitPrice(b), pricing.EffectivePrice(b), b.Status,
	}
}

func bookingTable(title, sheet string, bookings []models.Booking, revenueOnly bool, now time.Time) *Table {
	t := &Table{Title: title, Sheet: sheet, GeneratedAt: now, Columns: bookingColumns}
	var total float64
	var months int
	for i := range bookings {
		b := &bookings[i]
		if revenueOnly && !b.CountsAsRevenue() {
			continue
		}
		t.Rows = append(t.Rows, bookingRow(b))
		months += b.DurationMonths
		if b.CountsAsRevenue() {
			total += pricing.EffectivePrice(b)
		}
	}
	t.Totals = []any{fmt.Sprintf("TOTAL (%d)", len(t.Rows)), "", "", "", "", "", "", months, "", pricing.Round2(total), ""}
	return t
}

// RevenueTable lists approved and completed bookings with a revenue total.
func RevenueTable(bookings []models.Booking, now time.Time) *Table {
	return bookingTable("Revenue Report", "Revenue", bookings, true, now)
}

// BookingsTable lists bookings of any status. Its total only sums the
// revenue-counting ones.
func BookingsTable(bookings []models.Booking, now time.Time) *Table {
	return bookingTable("Bookings Report", "Bookings", bookings, false, now)
}

var propertyColumns = []Column{
	{Header: "Property ID", Width: 38},
	{Header: "Title", Width: 28},
	{Header: "City", Width: 16},
	{Header: "Status", Width: 11},
	{Header: "Rooms", Width: 8},
	{Header: "Beds", Width: 8},
	{Header: "Occupied", Width: 10},
	{Header: "Occupancy %", Width: 12},
	{Header: "Price", Width: 12, Money: true},
	{Header: "Rating", Width: 8},
}

// PropertiesTable is the listing inventory. Properties need Rooms.Beds
// preloaded.
func PropertiesTable(props []models.Property, now time.Time) *Table {
	t := &Table{Title: "Properties Report", Sheet: "Properties", GeneratedAt: now, Columns: propertyColumns}
	var rooms, beds, occupied int
	for _, p := range props {
		var pb, po int
		for _, r := range p.Rooms {
			for _, b := range r.Beds {
				pb++
				if b.Status == models.BedStatusOccupied {
					po++
				}
			}
		}
		rooms += len(p.Rooms)
		beds += pb
		occupied += po
		t.Rows = append(t.Rows, []any{
			p.ID.String(), p.Title, p.City, p.Status,
			len(p.Rooms), pb, po, percent(po, pb), p.Price, p.AvgRating,
		})
	}
	t.Totals = []any{fmt.Sprintf("TOTAL (%d)", len(props)), "", "", "", rooms, beds, occupied, percent(occupied, beds), "", ""}
	return t
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return pricing.Round2(float64(part) * 100 / float64(whole))
}

// text renders a cell for csv and pdf output.
func text(v any, money bool) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return fmt.Sprintf("%d", x)
	case float64:
		if money {
			return fmt.Sprintf("%.2f", x)
		}
		return fmt.Sprintf("%g", x)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
