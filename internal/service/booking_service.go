package service

import (
	"context"
	"fmt"
	"strings"

	"carebook/internal/domain"
	"carebook/internal/events"
	"carebook/internal/logging"
	"carebook/internal/metrics"
	"carebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BookingDraft is what a user submits from the booking form.
type BookingDraft struct {
	DurationType  models.DurationKind
	DurationValue decimal.Decimal
	Location      models.Location
}

type BookingService struct {
	bookings domain.BookingStore
	all      allBookingsLister
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

type allBookingsLister interface {
	ListAllBookings(ctx context.Context, actorEmail string, status models.BookingStatus) ([]*models.Booking, error)
}

func NewBookingService(
	bookings domain.BookingStore,
	all allBookingsLister,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		all:      all,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create validates the draft, prices it once and stores a Pending booking.
func (s *BookingService) Create(
	ctx context.Context,
	actor models.Identity,
	service *models.Service,
	draft BookingDraft,
) (*models.Booking, error) {
	if actor.Email == "" {
		return nil, ErrUnauthenticated
	}

	loc := draft.Location
	loc.Division = strings.TrimSpace(loc.Division)
	loc.District = strings.TrimSpace(loc.District)
	if loc.Division == "" || loc.District == "" {
		return nil, ErrLocationRequired
	}
	if !draft.DurationType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, draft.DurationType)
	}
	if service.IsCreatedBy(actor.Email) {
		return nil, ErrOwnService
	}

	city := strings.TrimSpace(loc.City)
	if city == "" {
		city = loc.District
	}

	booking := &models.Booking{
		ServiceID:     service.ID,
		ServiceName:   service.Title,
		UserEmail:     actor.Email,
		UserName:      actor.DisplayLabel(),
		DurationType:  draft.DurationType,
		DurationValue: draft.DurationValue,
		Division:      loc.Division,
		District:      loc.District,
		City:          city,
		Area:          strings.TrimSpace(loc.Area),
		Address:       strings.TrimSpace(loc.Address),
		TotalCost:     TotalCost(service.Rates(), draft.DurationType, draft.DurationValue),
		Status:        models.StatusPending,
	}

	created, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		metrics.IncBookingCreated(string(draft.DurationType), "error")
		s.logger.Error().Err(err).
			Str("service_id", service.ID).
			Str("user", logging.MaskEmail(actor.Email)).
			Msg("failed to create booking")
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated(string(draft.DurationType), "ok")
	s.logger.Info().
		Str("booking_id", created.ID).
		Str("service_id", created.ServiceID).
		Str("total_cost", created.TotalCost.String()).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, *created, "", actor.Email)

	return created, nil
}

// ListForUser loads the bookings requested by actor.
func (s *BookingService) ListForUser(ctx context.Context, actor models.Identity) (*BookingView, error) {
	if actor.Email == "" {
		return nil, ErrUnauthenticated
	}
	bookings, err := s.bookings.ListBookings(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return NewBookingView(bookings), nil
}

// ListAll loads every booking for the admin dashboard, optionally filtered by status.
func (s *BookingService) ListAll(ctx context.Context, actor models.Identity, status models.BookingStatus) (*BookingView, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	bookings, err := s.all.ListAllBookings(ctx, actor.Email, status)
	if err != nil {
		return nil, fmt.Errorf("list all bookings: %w", err)
	}
	return NewBookingView(bookings), nil
}

// ViewForTransition loads only the bookings an administrator could move to
// status to, one filtered list per source status. When bookingID is not among
// them the full list is loaded so Transition can report why the move is refused.
func (s *BookingService) ViewForTransition(
	ctx context.Context,
	actor models.Identity,
	bookingID string,
	to models.BookingStatus,
) (*BookingView, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	var candidates []*models.Booking
	for _, from := range SourceStatuses(to, true) {
		bookings, err := s.all.ListAllBookings(ctx, actor.Email, from)
		if err != nil {
			return nil, fmt.Errorf("list %s bookings: %w", from, err)
		}
		candidates = append(candidates, bookings...)
	}

	view := NewBookingView(candidates)
	if _, ok := view.Get(bookingID); ok {
		return view, nil
	}
	return s.ListAll(ctx, actor, "")
}

// Transition moves a booking of view to status to. The remote store is updated first and
// the view is reconciled only after it accepted the change.
func (s *BookingService) Transition(
	ctx context.Context,
	actor Actor,
	view *BookingView,
	bookingID string,
	to models.BookingStatus,
) (*models.Booking, error) {
	booking, ok := view.Get(bookingID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
	}
	from := booking.Status

	if !actor.Privileged && !booking.IsOwnedBy(actor.Identity.Email) {
		metrics.IncTransition(string(from), string(to), "rejected")
		return nil, ErrNotOwner
	}
	if err := checkTransition(from, to, actor.Privileged); err != nil {
		metrics.IncTransition(string(from), string(to), "rejected")
		return nil, err
	}

	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, to); err != nil {
		metrics.IncTransition(string(from), string(to), "error")
		s.logger.Error().Err(err).
			Str("booking_id", bookingID).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update booking status")
		return nil, fmt.Errorf("update booking %s: %w", bookingID, err)
	}

	view.Apply(bookingID, to)
	metrics.IncTransition(string(from), string(to), "ok")

	booking.Status = to
	s.logger.Info().
		Str("booking_id", bookingID).
		Str("from", string(from)).
		Str("to", string(to)).
		Bool("privileged", actor.Privileged).
		Msg("booking status changed")
	s.publishEvent(events.EventBookingStatusChanged, booking, from, actor.Identity.Email)

	return &booking, nil
}

// Cancel is the owner's cancellation of their own booking.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, view *BookingView, bookingID string) (*models.Booking, error) {
	return s.Transition(ctx, actor, view, bookingID, models.StatusCancelled)
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking, prev models.BookingStatus, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		ServiceID:    booking.ServiceID,
		ServiceName:  booking.ServiceName,
		UserEmail:    booking.UserEmail,
		UserName:     booking.UserName,
		DurationType: string(booking.DurationType),
		Duration:     booking.DurationValue,
		District:     booking.District,
		TotalCost:    booking.TotalCost,
		Status:       string(booking.Status),
		PrevStatus:   string(prev),
		ChangedBy:    changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
