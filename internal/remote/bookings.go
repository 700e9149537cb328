package remote

import (
	"context"
	"net/url"

	"carebook/internal/models"
)

type statusUpdate struct {
	Status models.BookingStatus `json:"status"`
}

// ListBookings returns the bookings requested by userEmail.
func (c *Client) ListBookings(ctx context.Context, userEmail string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := url.Values{"email": {userEmail}}
	if err := c.doGet(ctx, "list_bookings", "/bookings", query, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking stores a new booking and returns it with the assigned id.
func (c *Client) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	var res insertResult
	if err := c.doPost(ctx, "create_booking", "/bookings", booking, &res); err != nil {
		return nil, err
	}

	created := *booking
	if res.InsertedID != "" {
		created.ID = res.InsertedID
	}
	return &created, nil
}

// UpdateBookingStatus sends a status-only update.
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	return c.doPatch(ctx, "update_booking_status", "/bookings/"+escape(id), nil, statusUpdate{Status: status})
}
