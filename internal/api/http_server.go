package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"carebook/internal/config"
	"carebook/internal/domain"
	"carebook/internal/metrics"
	"carebook/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// Services are the application services behind the HTTP surface.
type Services struct {
	Sessions  *service.SessionService
	Catalog   *service.CatalogService
	Bookings  *service.BookingService
	Users     *service.UserService
	Dashboard *service.DashboardService
	Gate      *service.AccessGate
	Geo       domain.GeoDirectory
}

// HTTPServer exposes the carebook JSON API.
type HTTPServer struct {
	cfg     config.HTTPConfig
	svc     Services
	limiter *rateLimiter
	logger  *zerolog.Logger
	router  *mux.Router
	server  *http.Server
}

func NewHTTPServer(cfg config.HTTPConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:     cfg,
		svc:     svc,
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
	}
	srv.router = srv.routes()

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(routeLabelMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := r.PathPrefix("/api/v1").Subrouter()

	// public
	api.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/services", s.handleListServices).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", s.handleGetService).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}/quote", s.handleQuote).Methods(http.MethodGet)
	api.HandleFunc("/geo/divisions", s.handleDivisions).Methods(http.MethodGet)
	api.HandleFunc("/geo/divisions/{division}/districts", s.handleDistricts).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/federated/start", s.handleFederatedStart).Methods(http.MethodGet)
	api.HandleFunc("/auth/federated/callback", s.handleFederatedCallback).Methods(http.MethodGet)

	// authenticated
	protected := api.PathPrefix("").Subrouter()
	protected.Use(s.requireSession)
	protected.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/my/services", s.handleMyServices).Methods(http.MethodGet)
	protected.HandleFunc("/services", s.handleCreateService).Methods(http.MethodPost)
	protected.HandleFunc("/services/{id}", s.handleUpdateService).Methods(http.MethodPut)
	protected.HandleFunc("/services/{id}", s.handleDeleteService).Methods(http.MethodDelete)
	protected.HandleFunc("/bookings", s.handleCreateBooking).Methods(http.MethodPost)
	protected.HandleFunc("/my/bookings", s.handleMyBookings).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id}/cancel", s.handleCancelBooking).Methods(http.MethodPost)

	// admin
	api.HandleFunc("/admin/access", s.handleAdminAccess).Methods(http.MethodGet)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/stats", s.handleAdminStats).Methods(http.MethodGet)
	admin.HandleFunc("/bookings", s.handleAdminBookings).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/export", s.handleExportBookings).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id}", s.handleAdminTransition).Methods(http.MethodPatch)
	admin.HandleFunc("/users", s.handleAdminUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{email}/role", s.handleSetRole).Methods(http.MethodPatch)

	return r
}

// Handler returns the router wrapped in the edge middleware. CORS preflights and unknown
// routes never reach mux middleware, so these run outside the router.
func (s *HTTPServer) Handler() http.Handler {
	return s.loggingMiddleware(s.corsMiddleware(s.rateLimitMiddleware(s.router)))
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := recorder.route
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint)

		event := s.logger.Info()
		if recorder.status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("dur", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(s.cfg.AllowedOrigins))
	wildcard := false
	for _, o := range s.cfg.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || wildcard {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+requestIDHeader)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// routeLabelMiddleware reports the matched path template to the access log.
func routeLabelMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec, ok := w.(*statusRecorder); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					rec.route = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	route  string
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
