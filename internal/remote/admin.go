package remote

import (
	"context"
	"net/url"

	"carebook/internal/models"
)

type adminCheck struct {
	IsAdmin bool `json:"isAdmin"`
}

type roleUpdate struct {
	Role models.Role `json:"role"`
}

// CheckAdmin asks the access-control store whether email holds the admin role.
func (c *Client) CheckAdmin(ctx context.Context, email string) (bool, error) {
	var res adminCheck
	if err := c.doGet(ctx, "check_admin", "/admin/check/"+escape(email), nil, &res); err != nil {
		return false, err
	}
	return res.IsAdmin, nil
}

func (c *Client) GetStats(ctx context.Context, actorEmail string) (*models.AdminStats, error) {
	var stats models.AdminStats
	query := url.Values{"email": {actorEmail}}
	if err := c.doGet(ctx, "admin_stats", "/admin/stats", query, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListAllBookings returns every booking, filtered by status when it is set.
func (c *Client) ListAllBookings(ctx context.Context, actorEmail string, status models.BookingStatus) ([]*models.Booking, error) {
	query := url.Values{"email": {actorEmail}}
	if status != "" {
		query.Set("status", string(status))
	}

	var bookings []*models.Booking
	if err := c.doGet(ctx, "admin_bookings", "/admin/bookings", query, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) ListUsers(ctx context.Context, actorEmail string) ([]*models.User, error) {
	var users []*models.User
	query := url.Values{"email": {actorEmail}}
	if err := c.doGet(ctx, "admin_users", "/admin/users", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserRole changes the role of targetEmail on behalf of actorEmail.
func (c *Client) SetUserRole(ctx context.Context, actorEmail, targetEmail string, role models.Role) error {
	query := url.Values{"email": {actorEmail}}
	path := "/admin/users/" + escape(targetEmail) + "/role"
	return c.doPatch(ctx, "set_user_role", path, query, roleUpdate{Role: role})
}
