package domain

import (
	"context"
	"time"

	"carebook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ServiceStore is the remote catalog of care services.
type ServiceStore interface {
	ListServices(ctx context.Context, createdBy string) ([]*models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	CreateService(ctx context.Context, service *models.Service) (*models.Service, error)
	UpdateService(ctx context.Context, id string, update models.ServiceUpdate) error
	DeleteService(ctx context.Context, id string) error
}

// BookingStore is the remote booking store.
type BookingStore interface {
	ListBookings(ctx context.Context, userEmail string) ([]*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
}

// AdminStore is the remote access-control store and admin dashboard API.
type AdminStore interface {
	CheckAdmin(ctx context.Context, email string) (bool, error)
	GetStats(ctx context.Context, actorEmail string) (*models.AdminStats, error)
	ListAllBookings(ctx context.Context, actorEmail string, status models.BookingStatus) ([]*models.Booking, error)
	ListUsers(ctx context.Context, actorEmail string) ([]*models.User, error)
	SetUserRole(ctx context.Context, actorEmail, targetEmail string, role models.Role) error
}

// UserStore upserts user profiles on registration and first login.
type UserStore interface {
	UpsertUser(ctx context.Context, user *models.User) error
}

type SessionRepository interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, id string) error
	SaveLoginState(ctx context.Context, state string, ttl time.Duration) error
	ConsumeLoginState(ctx context.Context, state string) (bool, error)
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// IdentityProvider is the external email/password and federated account service.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*models.ProviderSession, error)
	SignIn(ctx context.Context, email, password string) (*models.ProviderSession, error)
	SignInWithIdp(ctx context.Context, providerID, accessToken, requestURI string) (*models.ProviderSession, error)
}

// FederatedFlow drives the OAuth2 authorization-code leg of federated login.
type FederatedFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// GeoDirectory resolves divisions and districts for the booking form.
type GeoDirectory interface {
	Divisions(ctx context.Context) []string
	Districts(ctx context.Context, division string) []string
}
