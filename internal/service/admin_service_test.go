package service

import (
	"bytes"
	"context"
	"testing"

	"carebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	actor := models.Identity{Email: "admin@example.com"}

	t.Run("Stats", func(t *testing.T) {
		admin := new(mockAdminStore)
		svc := NewDashboardService(admin, NewBookingService(new(mockBookingStore), admin, nil, testLogger()), testLogger())
		admin.On("GetStats", ctx, "admin@example.com").Return(&models.AdminStats{TotalUsers: 3}, nil).Once()

		stats, err := svc.Stats(ctx, actor)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalUsers)
	})

	t.Run("ExportBookings", func(t *testing.T) {
		admin := new(mockAdminStore)
		svc := NewDashboardService(admin, NewBookingService(new(mockBookingStore), admin, nil, testLogger()), testLogger())
		admin.On("ListAllBookings", ctx, "admin@example.com", models.BookingStatus("")).Return([]*models.Booking{
			pendingBooking("b-1", "a@example.com"),
			pendingBooking("b-2", "b@example.com"),
		}, nil).Once()

		data, err := svc.ExportBookings(ctx, actor, "")
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Bookings")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}
