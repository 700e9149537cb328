package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carebook/internal/export"
	"carebook/internal/models"
	"carebook/internal/service"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const msgInvalidBody = "invalid JSON body"

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- catalog ---

func (s *HTTPServer) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.svc.Catalog.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *HTTPServer) handleGetService(w http.ResponseWriter, r *http.Request) {
	svc, err := s.svc.Catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// handleQuote previews the cost of a booking without creating it.
func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := models.DurationKind(strings.TrimSpace(q.Get("durationType")))
	value := service.ParseDurationValue(q.Get("durationValue"))
	if err := validateDuration(kind, value); err != nil {
		s.respondError(w, r, err)
		return
	}

	svc, err := s.svc.Catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.NewQuote(svc, kind, value))
}

func (s *HTTPServer) handleMyServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.svc.Catalog.ListByCreator(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

type serviceRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	ChargePerHour decimal.Decimal `json:"chargePerHour"`
	ChargePerDay  decimal.Decimal `json:"chargePerDay"`
	Image         string          `json:"image"`
	Features      []string        `json:"features"`
}

func (s *HTTPServer) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	created, err := s.svc.Catalog.Create(r.Context(), identityFrom(r.Context()), service.ServiceDraft{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		ChargePerHour: req.ChargePerHour,
		ChargePerDay:  req.ChargePerDay,
		Image:         req.Image,
		Features:      req.Features,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	var update models.ServiceUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	id := mux.Vars(r)["id"]
	if err := s.svc.Catalog.Update(r.Context(), identityFrom(r.Context()), id, update); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *HTTPServer) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Catalog.Delete(r.Context(), identityFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- geo ---

func (s *HTTPServer) handleDivisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"divisions": s.svc.Geo.Divisions(r.Context())})
}

func (s *HTTPServer) handleDistricts(w http.ResponseWriter, r *http.Request) {
	division := mux.Vars(r)["division"]
	writeJSON(w, http.StatusOK, map[string]any{
		"division":  division,
		"districts": s.svc.Geo.Districts(r.Context(), division),
	})
}

// --- bookings ---

type bookingRequest struct {
	ServiceID     string              `json:"serviceId"`
	DurationType  models.DurationKind `json:"durationType"`
	DurationValue decimal.Decimal     `json:"durationValue"`
	Division      string              `json:"division"`
	District      string              `json:"district"`
	City          string              `json:"city"`
	Area          string              `json:"area"`
	Address       string              `json:"address"`
}

// validateDuration applies the booking form bounds: positive, at most a day of hours or a year of days.
func validateDuration(kind models.DurationKind, value decimal.Decimal) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", service.ErrInvalidDuration, kind)
	}
	if !value.IsPositive() {
		return fmt.Errorf("%w: duration must be positive", service.ErrInvalidDuration)
	}

	limit := decimal.NewFromInt(models.MaxDurationDays)
	if kind == models.DurationHours {
		limit = decimal.NewFromInt(models.MaxDurationHours)
	}
	if value.GreaterThan(limit) {
		return fmt.Errorf("%w: at most %s %s", service.ErrInvalidDuration, limit, kind)
	}
	return nil
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if strings.TrimSpace(req.ServiceID) == "" {
		writeError(w, http.StatusBadRequest, "serviceId is required")
		return
	}
	if err := validateDuration(req.DurationType, req.DurationValue); err != nil {
		s.respondError(w, r, err)
		return
	}

	svc, err := s.svc.Catalog.Get(r.Context(), req.ServiceID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	booking, err := s.svc.Bookings.Create(r.Context(), identityFrom(r.Context()), svc, service.BookingDraft{
		DurationType:  req.DurationType,
		DurationValue: req.DurationValue,
		Location: models.Location{
			Division: req.Division,
			District: req.District,
			City:     req.City,
			Area:     req.Area,
			Address:  req.Address,
		},
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	actor := service.Actor{Identity: identityFrom(r.Context())}
	view, err := s.svc.Bookings.ListForUser(r.Context(), actor.Identity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": view.Entries(actor)})
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	actor := service.Actor{Identity: identityFrom(r.Context())}
	view, err := s.svc.Bookings.ListForUser(r.Context(), actor.Identity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	booking, err := s.svc.Bookings.Cancel(r.Context(), actor, view, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// --- accounts ---

type registerRequest struct {
	NID      string `json:"nid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := s.svc.Sessions.Register(r.Context(), service.Registration{
		NID:      req.NID,
		Name:     req.Name,
		Email:    req.Email,
		Contact:  req.Contact,
		Password: req.Password,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := s.svc.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleFederatedStart(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.Sessions.FederatedStart(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *HTTPServer) handleFederatedCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		writeError(w, http.StatusUnauthorized, "federated login was not approved: "+providerErr)
		return
	}

	res, err := s.svc.Sessions.FederatedCallback(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())
	if err := s.svc.Sessions.Logout(r.Context(), session.ID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      session.Identity,
		"expiresAt": session.ExpiresAt,
	})
}

// --- admin ---

// handleAdminAccess reports the gate decision so the UI can pick a screen.
func (s *HTTPServer) handleAdminAccess(w http.ResponseWriter, r *http.Request) {
	state, _, err := s.checkAccess(r)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"decision": service.DecisionVerifying})
		return
	}

	resp := map[string]any{
		"decision": state.Decision(),
		"isAdmin":  state.IsAdmin(),
	}
	if id := state.Identity(); id != nil {
		resp["user"] = id
	}
	if state.Decision() == service.DecisionRedirectLogin {
		resp["redirect"] = loginPath
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Dashboard.Stats(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":     stats,
		"breakdown": stats.Breakdown(),
	})
}

func (s *HTTPServer) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	actor := service.Actor{Identity: identityFrom(r.Context()), Privileged: true}
	status := models.BookingStatus(strings.TrimSpace(r.URL.Query().Get("status")))

	view, err := s.svc.Bookings.ListAll(r.Context(), actor.Identity, status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": view.Entries(actor)})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	status := models.BookingStatus(strings.TrimSpace(r.URL.Query().Get("status")))

	data, err := s.svc.Dashboard.ExportBookings(r.Context(), identityFrom(r.Context()), status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(status, time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
}

func (s *HTTPServer) handleAdminTransition(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	actor := service.Actor{Identity: identityFrom(r.Context()), Privileged: true}
	bookingID := mux.Vars(r)["id"]
	view, err := s.svc.Bookings.ViewForTransition(r.Context(), actor.Identity, bookingID, req.Status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	booking, err := s.svc.Bookings.Transition(r.Context(), actor, view, bookingID, req.Status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	roster, err := s.svc.Users.LoadRoster(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": roster.Snapshot()})
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

func (s *HTTPServer) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	target := mux.Vars(r)["email"]
	if err := s.svc.Users.SetRole(r.Context(), identityFrom(r.Context()), nil, target, req.Role); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": target, "role": req.Role})
}
