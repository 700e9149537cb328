package remote

import (
	"context"
	"net/url"

	"carebook/internal/models"
)

// insertResult is the acknowledgement returned by create endpoints.
type insertResult struct {
	InsertedID string `json:"insertedId"`
}

// ListServices returns all services, or the ones created by createdBy when set.
func (c *Client) ListServices(ctx context.Context, createdBy string) ([]*models.Service, error) {
	var query url.Values
	if createdBy != "" {
		query = url.Values{"email": {createdBy}}
	}

	var services []*models.Service
	if err := c.doGet(ctx, "list_services", "/services", query, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) GetService(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := c.doGet(ctx, "get_service", "/services/"+escape(id), nil, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// CreateService stores a new service and returns it with the assigned id.
func (c *Client) CreateService(ctx context.Context, service *models.Service) (*models.Service, error) {
	var res insertResult
	if err := c.doPost(ctx, "create_service", "/services", service, &res); err != nil {
		return nil, err
	}

	created := *service
	if res.InsertedID != "" {
		created.ID = res.InsertedID
	}
	return &created, nil
}

func (c *Client) UpdateService(ctx context.Context, id string, update models.ServiceUpdate) error {
	return c.doPut(ctx, "update_service", "/services/"+escape(id), update)
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.doDelete(ctx, "delete_service", "/services/"+escape(id))
}
