package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := zerolog.New(io.Discard)
	return NewClient(srv.URL, 2*time.Second, &logger)
}

func TestClient_ListServices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/services", r.URL.Path)
		assert.Equal(t, "owner@x.com", r.URL.Query().Get("email"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"_id":"s1","title":"Baby Care","chargePerHour":150,"chargePerDay":1200,"createdBy":"owner@x.com"}]`))
	})

	services, err := c.ListServices(context.Background(), "owner@x.com")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "s1", services[0].ID)
	assert.True(t, services[0].ChargePerHour.Equal(decimal.NewFromInt(150)))
}

func TestClient_BearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := WithToken(context.Background(), "tok-1")
	_, err := c.ListBookings(ctx, "a@x.com")
	require.NoError(t, err)
}

func TestClient_CreateBooking(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(450), body["totalCost"])
		assert.Equal(t, "Pending", body["status"])
		assert.NotContains(t, body, "_id")
		assert.NotContains(t, body, "createdAt")

		_, _ = w.Write([]byte(`{"acknowledged":true,"insertedId":"b42"}`))
	})

	b := &models.Booking{
		ServiceID:     "s1",
		DurationType:  models.DurationHours,
		DurationValue: decimal.NewFromInt(3),
		TotalCost:     decimal.NewFromInt(450),
		Status:        models.StatusPending,
	}
	created, err := c.CreateBooking(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "b42", created.ID)
	assert.Empty(t, b.ID)
}

func TestClient_UpdateBookingStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/bookings/b1", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status":"Cancelled"}`, string(raw))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.UpdateBookingStatus(context.Background(), "b1", models.StatusCancelled))
}

func TestClient_Admin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/check/admin@x.com":
			_, _ = w.Write([]byte(`{"isAdmin":true}`))
		case "/admin/bookings":
			assert.Equal(t, "admin@x.com", r.URL.Query().Get("email"))
			assert.Equal(t, "Pending", r.URL.Query().Get("status"))
			_, _ = w.Write([]byte(`[{"_id":"b1","status":"Pending"}]`))
		case "/admin/users/user@x.com/role":
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "admin@x.com", r.URL.Query().Get("email"))
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"role":"admin"}`, string(raw))
		case "/admin/stats":
			_, _ = w.Write([]byte(`{"totalBookings":3,"totalRevenue":1650,"statusCounts":[{"_id":"Pending","count":2}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	ok, err := c.CheckAdmin(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	bookings, err := c.ListAllBookings(ctx, "admin@x.com", models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	require.NoError(t, c.SetUserRole(ctx, "admin@x.com", "user@x.com", models.RoleAdmin))

	stats, err := c.GetStats(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.Breakdown()[models.StatusPending])
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		is     []error
		isNot  []error
	}{
		{"unauthorized", http.StatusUnauthorized, []error{ErrUnauthorized}, []error{ErrRemote}},
		{"forbidden", http.StatusForbidden, []error{ErrUnauthorized}, []error{ErrRemote}},
		{"not found", http.StatusNotFound, []error{ErrNotFound, ErrRemote}, []error{ErrUnauthorized}},
		{"server error", http.StatusInternalServerError, []error{ErrRemote}, []error{ErrUnauthorized, ErrNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			err := c.UpdateBookingStatus(context.Background(), "b1", models.StatusConfirmed)
			require.Error(t, err)
			for _, target := range tt.is {
				assert.ErrorIs(t, err, target)
			}
			for _, target := range tt.isNot {
				assert.NotErrorIs(t, err, target)
			}

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, "nope", se.Body)
		})
	}

	t.Run("invalid body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		})
		_, err := c.GetService(context.Background(), "s1")
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.ErrorIs(t, err, ErrRemote)
	})

	t.Run("network", func(t *testing.T) {
		logger := zerolog.New(io.Discard)
		c := NewClient("http://127.0.0.1:1", time.Second, &logger)
		_, err := c.ListServices(context.Background(), "")
		assert.ErrorIs(t, err, ErrRemote)
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.ListServices(ctx, "")
		assert.ErrorIs(t, err, ErrRemote)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_EscapesPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/check/a b@x.com", r.URL.Path)
		_, _ = w.Write([]byte(`{"isAdmin":false}`))
	})

	ok, err := c.CheckAdmin(context.Background(), "a b@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
