package reports

import (
	"bytes"
	"encoding/csv"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var generated = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleBookings() []models.Booking {
	prop := &models.Property{ID: uuid.New(), Title: "Sunrise Boarding House", Price: 3000}
	room := &models.Room{Name: "Room 1", Price: 2500}
	total := 9000.0
	return []models.Booking{
		{
			ID: uuid.New(), Property: prop, Room: room, Bed: &models.Bed{Label: "A", Price: 2000},
			Tenant:     &models.User{FullName: "Ana Cruz", Email: "ana@example.com"},
			MoveInDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), DurationMonths: 3,
			Status: models.BookingStatusApproved,
		},
		{
			ID: uuid.New(), Property: prop, Room: room,
			Tenant:     &models.User{FullName: "Ben Reyes", Email: "ben@example.com"},
			MoveInDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), DurationMonths: 3,
			TotalPrice: &total, Status: models.BookingStatusCompleted,
		},
		{
			ID: uuid.New(), Property: prop,
			MoveInDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), DurationMonths: 1,
			Status: models.BookingStatusPending,
		},
	}
}

func TestRevenueTableSkipsNonRevenue(t *testing.T) {
	table := RevenueTable(sampleBookings(), generated)

	require.Len(t, table.Rows, 2)
	// bed price wins over room and property
	assert.Equal(t, 2000.0, table.Rows[0][8])
	assert.Equal(t, 6000.0, table.Rows[0][9])
	// stored total is kept; unit price derives from it
	assert.Equal(t, 3000.0, table.Rows[1][8])
	assert.Equal(t, 9000.0, table.Rows[1][9])
	assert.Equal(t, 15000.0, table.Totals[9])
	assert.Equal(t, "TOTAL (2)", table.Totals[0])
}

func TestBookingsTableTotalsOnlyRevenue(t *testing.T) {
	table := BookingsTable(sampleBookings(), generated)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, 15000.0, table.Totals[9])
	assert.Equal(t, 7, table.Totals[7])
	assert.Equal(t, "", table.Rows[2][4])
}

func TestPropertiesTable(t *testing.T) {
	props := []models.Property{{
		ID: uuid.New(), Title: "Lakeview", City: "Cebu", Status: models.PropertyStatusApproved, Price: 4000,
		Rooms: []models.Room{
			{Beds: []models.Bed{{Status: models.BedStatusOccupied}, {Status: models.BedStatusAvailable}}},
			{Beds: []models.Bed{{Status: models.BedStatusOccupied}}},
		},
	}, {ID: uuid.New(), Title: "Empty Lot"}}

	table := PropertiesTable(props, generated)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0][4])
	assert.Equal(t, 3, table.Rows[0][5])
	assert.Equal(t, 2, table.Rows[0][6])
	assert.Equal(t, 66.67, table.Rows[0][7])
	assert.Equal(t, 0.0, table.Rows[1][7])
	assert.Equal(t, 66.67, table.Totals[7])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, RevenueTable(sampleBookings(), generated)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Booking ID", records[0][0])
	assert.Equal(t, "Ana Cruz", records[1][4])
	assert.Equal(t, "2025-01-05", records[1][6])
	assert.Equal(t, "6000.00", records[1][9])
	assert.Equal(t, "15000.00", records[3][9])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, RevenueTable(sampleBookings(), generated)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Revenue")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Tenant Email", rows[0][5])
	assert.Equal(t, "ben@example.com", rows[2][5])
	assert.Equal(t, "TOTAL (2)", rows[3][0])

	v, err := f.GetCellValue("Revenue", "J4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "15000", v)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, BookingsTable(sampleBookings(), generated)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Equal(t, "revenue-report-20250301.pdf", FormatPDF.Filename(&Table{Sheet: "Revenue", GeneratedAt: generated}))
}

func TestParseRange(t *testing.T) {
	from, to, err := ParseRange("2025-01-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2025, from.Year())
	assert.Equal(t, time.March, to.Month())

	from, to, err = ParseRange("", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	_, _, err = ParseRange("2025-13-01", "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, _, err = ParseRange("2025-04-01", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestHandlerRejectsBadQuery(t *testing.T) {
	app := fiber.New()
	h := NewHandler(NewService(nil))
	app.Get("/admin/reports/:kind", h.Admin)

	for _, url := range []string{
		"/admin/reports/revenue?format=docx",
		"/admin/reports/revenue?from=yesterday",
		"/admin/reports/revenue?landlord_id=nope",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, url)
		assert.Contains(t, string(body), `"error":true`)
	}
}
