package service

import (
	"context"
	"fmt"

	"carebook/internal/domain"
	"carebook/internal/export"
	"carebook/internal/models"

	"github.com/rs/zerolog"
)

// DashboardService serves the aggregate side of the admin dashboard.
type DashboardService struct {
	admin    domain.AdminStore
	bookings *BookingService
	logger   *zerolog.Logger
}

func NewDashboardService(admin domain.AdminStore, bookings *BookingService, logger *zerolog.Logger) *DashboardService {
	return &DashboardService{admin: admin, bookings: bookings, logger: logger}
}

// Stats returns the aggregate counters as seen by actor.
func (s *DashboardService) Stats(ctx context.Context, actor models.Identity) (*models.AdminStats, error) {
	stats, err := s.admin.GetStats(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return stats, nil
}

// ExportBookings renders the (optionally status-filtered) booking list as XLSX.
func (s *DashboardService) ExportBookings(ctx context.Context, actor models.Identity, status models.BookingStatus) ([]byte, error) {
	view, err := s.bookings.ListAll(ctx, actor, status)
	if err != nil {
		return nil, err
	}

	data, err := export.BookingsXLSX(view.Snapshot())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render bookings export")
		return nil, fmt.Errorf("export bookings: %w", err)
	}

	s.logger.Info().Int("rows", view.Len()).Str("status", string(status)).Msg("bookings exported")
	return data, nil
}
