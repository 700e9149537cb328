package remote

import (
	"context"

	"carebook/internal/models"
)

// UpsertUser creates the user profile or refreshes it when it already exists.
func (c *Client) UpsertUser(ctx context.Context, user *models.User) error {
	return c.doPost(ctx, "upsert_user", "/users", user, nil)
}
