package export

import (
	"bytes"
	"testing"
	"time"

	"carebook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBookingsXLSX(t *testing.T) {
	bookings := []models.Booking{
		{
			ID: "b1", ServiceName: "Baby Care", UserName: "Jane", UserEmail: "jane@x.com",
			DurationType: models.DurationHours, DurationValue: decimal.NewFromInt(3),
			Division: "Dhaka", District: "Gazipur", City: "Gazipur",
			TotalCost: decimal.NewFromInt(450), Status: models.StatusPending,
			CreatedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			ID: "b2", ServiceName: "Elderly Care", UserName: "John", UserEmail: "john@x.com",
			DurationType: models.DurationDays, DurationValue: decimal.NewFromInt(2),
			Division: "Sylhet", District: "Sylhet",
			TotalCost: decimal.NewFromInt(2400), Status: models.StatusConfirmed,
		},
		{
			ID: "b3", TotalCost: decimal.NewFromInt(300), Status: models.StatusPending,
		},
	}

	raw, err := BookingsXLSX(bookings)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Bookings", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "b1", rows[1][0])
	assert.Equal(t, "450", rows[1][11])
	assert.Equal(t, "Pending", rows[1][12])
	assert.Equal(t, "2026-05-01 09:30", rows[1][13])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 6)
	assert.Equal(t, []string{"Pending", "2", "750"}, summary[1])
	assert.Equal(t, []string{"Confirmed", "1", "2400"}, summary[2])
	assert.Equal(t, []string{"Completed", "0", "0"}, summary[3])
	assert.Equal(t, []string{"Total", "3", "3150"}, summary[5])
}

func TestBookingsXLSXEmpty(t *testing.T) {
	raw, err := BookingsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "bookings_2026-10-17.xlsx", FileName("", now))
	assert.Equal(t, "bookings_Cancelled_2026-10-17.xlsx", FileName(models.StatusCancelled, now))
}
