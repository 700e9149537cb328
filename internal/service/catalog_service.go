package service

import (
	"context"
	"fmt"
	"strings"

	"carebook/internal/domain"
	"carebook/internal/logging"
	"carebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ServiceDraft is the create-service form.
type ServiceDraft struct {
	Title         string
	Description   string
	Category      string
	ChargePerHour decimal.Decimal
	ChargePerDay  decimal.Decimal
	Image         string
	Features      []string
}

type CatalogService struct {
	store  domain.ServiceStore
	logger *zerolog.Logger
}

func NewCatalogService(store domain.ServiceStore, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]*models.Service, error) {
	services, err := s.store.ListServices(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// ListByCreator returns the services actor created.
func (s *CatalogService) ListByCreator(ctx context.Context, actor models.Identity) ([]*models.Service, error) {
	if actor.Email == "" {
		return nil, ErrUnauthenticated
	}
	services, err := s.store.ListServices(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("list services of creator: %w", err)
	}
	return services, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	service, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service %s: %w", id, err)
	}
	return service, nil
}

// Create stores a new service owned by actor.
func (s *CatalogService) Create(ctx context.Context, actor models.Identity, draft ServiceDraft) (*models.Service, error) {
	if actor.Email == "" {
		return nil, ErrUnauthenticated
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidService)
	}
	if err := validateRates(draft.ChargePerHour, draft.ChargePerDay); err != nil {
		return nil, err
	}

	features := make([]string, 0, len(draft.Features))
	for _, f := range draft.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	if len(features) == 0 {
		return nil, ErrFeaturesRequired
	}

	image := strings.TrimSpace(draft.Image)
	if image == "" {
		image = models.DefaultServiceImage
	}

	service := &models.Service{
		Title:         title,
		Description:   strings.TrimSpace(draft.Description),
		Category:      strings.TrimSpace(draft.Category),
		ChargePerHour: draft.ChargePerHour,
		ChargePerDay:  draft.ChargePerDay,
		Image:         image,
		Features:      features,
		CreatedBy:     actor.Email,
	}

	created, err := s.store.CreateService(ctx, service)
	if err != nil {
		s.logger.Error().Err(err).Str("user", logging.MaskEmail(actor.Email)).Msg("failed to create service")
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.logger.Info().Str("service_id", created.ID).Str("title", created.Title).Msg("service created")
	return created, nil
}

// Update edits title, description and rates of a service owned by actor.
func (s *CatalogService) Update(ctx context.Context, actor models.Identity, id string, update models.ServiceUpdate) error {
	update.Title = strings.TrimSpace(update.Title)
	if update.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidService)
	}
	if err := validateRates(update.ChargePerHour, update.ChargePerDay); err != nil {
		return err
	}
	if err := s.checkOwner(ctx, actor, id); err != nil {
		return err
	}

	if err := s.store.UpdateService(ctx, id, update); err != nil {
		s.logger.Error().Err(err).Str("service_id", id).Msg("failed to update service")
		return fmt.Errorf("update service %s: %w", id, err)
	}
	return nil
}

// Delete removes a service owned by actor.
func (s *CatalogService) Delete(ctx context.Context, actor models.Identity, id string) error {
	if err := s.checkOwner(ctx, actor, id); err != nil {
		return err
	}

	if err := s.store.DeleteService(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("service_id", id).Msg("failed to delete service")
		return fmt.Errorf("delete service %s: %w", id, err)
	}

	s.logger.Info().Str("service_id", id).Msg("service deleted")
	return nil
}

func (s *CatalogService) checkOwner(ctx context.Context, actor models.Identity, id string) error {
	if actor.Email == "" {
		return ErrUnauthenticated
	}
	service, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !service.IsCreatedBy(actor.Email) {
		return ErrNotServiceOwner
	}
	return nil
}

func validateRates(hourly, daily decimal.Decimal) error {
	if !hourly.IsPositive() || !daily.IsPositive() {
		return fmt.Errorf("%w: hourly and daily charges must be positive", ErrInvalidService)
	}
	return nil
}
